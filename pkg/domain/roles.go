package domain

// Role is a member's role within one organization.
//
// Approval policy hangs off the role: admins post transactions immediately
// and are the only role allowed to drive approval transitions; staff record
// transactions which start pending when approvals are enabled; funders are
// read-scoped donors.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleStaff  Role = "staff"
	RoleFunder Role = "funder"
)

func (r Role) IsAdmin() bool { return r == RoleAdmin }

// CanRecord reports whether the role may create income/expense transactions.
func (r Role) CanRecord() bool { return r == RoleAdmin || r == RoleStaff }

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleFunder:
		return true
	}
	return false
}
