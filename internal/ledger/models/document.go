package models

import (
	"fundledger/pkg/domain"
)

// OrgDocument is the single remote document holding everything that belongs
// to one organization. Every write to any sub-array rewrites that array's
// full contents remotely; there is no per-entity remote addressing, so the
// remote store resolves concurrent writers last-writer-wins per array.
type OrgDocument struct {
	Name        string        `json:"name"`
	Owner       domain.ActorID `json:"owner"`
	Memberships []Membership  `json:"memberships"`
	OrgSettings OrgSettings   `json:"orgSettings"`
	Funders     []Funder      `json:"funders"`
	Projects    []Project     `json:"projects"`
	Incomes     []Transaction `json:"incomes"`
	Expenses    []Transaction `json:"expenses"`
	Logs        []LogEntry    `json:"logs"`
	Invites     []Invite      `json:"invites"`
}

// Clone deep-copies the document. Rollback snapshots and read snapshots both
// rely on clones never sharing backing arrays with live state.
func (d *OrgDocument) Clone() *OrgDocument {
	out := *d
	out.Memberships = append([]Membership(nil), d.Memberships...)
	out.Funders = append([]Funder(nil), d.Funders...)
	out.Projects = append([]Project(nil), d.Projects...)
	out.Invites = append([]Invite(nil), d.Invites...)

	out.Incomes = make([]Transaction, len(d.Incomes))
	for i := range d.Incomes {
		out.Incomes[i] = d.Incomes[i].clone()
	}
	out.Expenses = make([]Transaction, len(d.Expenses))
	for i := range d.Expenses {
		out.Expenses[i] = d.Expenses[i].clone()
	}
	out.Logs = make([]LogEntry, len(d.Logs))
	for i := range d.Logs {
		out.Logs[i] = d.Logs[i].clone()
	}
	return &out
}

// Income returns a pointer into the document's incomes array, or nil.
func (d *OrgDocument) Income(id domain.TransactionID) *Transaction {
	for i := range d.Incomes {
		if d.Incomes[i].ID == id {
			return &d.Incomes[i]
		}
	}
	return nil
}

// Expense returns a pointer into the document's expenses array, or nil.
func (d *OrgDocument) Expense(id domain.TransactionID) *Transaction {
	for i := range d.Expenses {
		if d.Expenses[i].ID == id {
			return &d.Expenses[i]
		}
	}
	return nil
}

func (d *OrgDocument) Project(id domain.ProjectID) *Project {
	for i := range d.Projects {
		if d.Projects[i].ID == id {
			return &d.Projects[i]
		}
	}
	return nil
}

func (d *OrgDocument) Funder(id domain.FunderID) *Funder {
	for i := range d.Funders {
		if d.Funders[i].ID == id {
			return &d.Funders[i]
		}
	}
	return nil
}

func (d *OrgDocument) Log(id domain.LogID) *LogEntry {
	for i := range d.Logs {
		if d.Logs[i].ID == id {
			return &d.Logs[i]
		}
	}
	return nil
}

func (d *OrgDocument) InviteByToken(token string) *Invite {
	for i := range d.Invites {
		if d.Invites[i].Token == token {
			return &d.Invites[i]
		}
	}
	return nil
}

// Admins lists the administrative memberships, the notification audience for
// pending transactions.
func (d *OrgDocument) Admins() []Membership {
	var out []Membership
	for _, m := range d.Memberships {
		if m.Role.IsAdmin() {
			out = append(out, m)
		}
	}
	return out
}

// FunderReferenced reports whether any transaction resolves to the funder's
// wallet or any project is owned by it. Referenced funders are immutable
// apart from deactivation.
func (d *OrgDocument) FunderReferenced(id domain.FunderID) bool {
	wallet := WalletRef(domain.WalletForFunder(id))
	for i := range d.Projects {
		if d.Projects[i].Owner == wallet {
			return true
		}
	}
	for i := range d.Incomes {
		if d.Incomes[i].Wallet == wallet {
			return true
		}
	}
	for i := range d.Expenses {
		if d.Expenses[i].Wallet == wallet {
			return true
		}
	}
	return false
}
