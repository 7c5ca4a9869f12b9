// Package domain holds the shared vocabulary of the ledger: typed
// identifiers, member roles, and the wallet sentinel. Keeping these in one
// place lets the compiler enforce that a FunderID is never handed to an API
// expecting a ProjectID.
package domain

import (
	"github.com/google/uuid"

	dErrors "fundledger/pkg/domain-errors"
)

// Typed UUIDs. Distinct named types so cross-entity assignment is a compile
// error rather than a data-corruption bug.
type (
	OrgID         uuid.UUID
	FunderID      uuid.UUID
	ProjectID     uuid.UUID
	TransactionID uuid.UUID
	LogID         uuid.UUID
	InviteID      uuid.UUID
)

// ActorID identifies who performed an action. It is a free-form string rather
// than a UUID so synthetic actors (e.g. the payment gateway callback) can be
// attributed without minting fake member ids.
type ActorID string

func (id OrgID) String() string         { return uuid.UUID(id).String() }
func (id FunderID) String() string      { return uuid.UUID(id).String() }
func (id ProjectID) String() string     { return uuid.UUID(id).String() }
func (id TransactionID) String() string { return uuid.UUID(id).String() }
func (id LogID) String() string         { return uuid.UUID(id).String() }
func (id InviteID) String() string      { return uuid.UUID(id).String() }

func (id OrgID) IsZero() bool         { return uuid.UUID(id) == uuid.Nil }
func (id ProjectID) IsZero() bool     { return uuid.UUID(id) == uuid.Nil }
func (id TransactionID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// Text marshaling keeps the canonical UUID string on the wire. Defined types
// over uuid.UUID do not inherit its method set, so without these the ids
// would JSON-encode as raw byte arrays.
func (id OrgID) MarshalText() ([]byte, error)         { return []byte(id.String()), nil }
func (id FunderID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }
func (id ProjectID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id TransactionID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id LogID) MarshalText() ([]byte, error)         { return []byte(id.String()), nil }
func (id InviteID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }

func unmarshalUUIDText(b []byte) (uuid.UUID, error) {
	var u uuid.UUID
	err := u.UnmarshalText(b)
	return u, err
}

func (id *OrgID) UnmarshalText(b []byte) error {
	u, err := unmarshalUUIDText(b)
	*id = OrgID(u)
	return err
}

func (id *FunderID) UnmarshalText(b []byte) error {
	u, err := unmarshalUUIDText(b)
	*id = FunderID(u)
	return err
}

func (id *ProjectID) UnmarshalText(b []byte) error {
	u, err := unmarshalUUIDText(b)
	*id = ProjectID(u)
	return err
}

func (id *TransactionID) UnmarshalText(b []byte) error {
	u, err := unmarshalUUIDText(b)
	*id = TransactionID(u)
	return err
}

func (id *LogID) UnmarshalText(b []byte) error {
	u, err := unmarshalUUIDText(b)
	*id = LogID(u)
	return err
}

func (id *InviteID) UnmarshalText(b []byte) error {
	u, err := unmarshalUUIDText(b)
	*id = InviteID(u)
	return err
}

// parseUUID enforces the shared invariant: ids must be valid, non-empty,
// non-nil UUIDs. Validation happens at trust boundaries so everything past
// the parse can assume a well-formed id.
func parseUUID(raw, what string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" must not be the nil UUID")
	}
	return parsed, nil
}

func ParseOrgID(raw string) (OrgID, error) {
	parsed, err := parseUUID(raw, "organization id")
	return OrgID(parsed), err
}

func ParseFunderID(raw string) (FunderID, error) {
	parsed, err := parseUUID(raw, "funder id")
	return FunderID(parsed), err
}

func ParseProjectID(raw string) (ProjectID, error) {
	parsed, err := parseUUID(raw, "project id")
	return ProjectID(parsed), err
}

func ParseTransactionID(raw string) (TransactionID, error) {
	parsed, err := parseUUID(raw, "transaction id")
	return TransactionID(parsed), err
}

func ParseLogID(raw string) (LogID, error) {
	parsed, err := parseUUID(raw, "log entry id")
	return LogID(parsed), err
}
