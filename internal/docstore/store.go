// Package docstore abstracts the authoritative remote store as a
// key→document store: one JSON document per organization, whole-collection
// replace as the only write primitive, and a subscription feed that pushes
// full snapshots.
//
// The store deliberately offers no compare-and-swap: concurrent writers to
// the same collection resolve last-writer-wins at the array level. The sync
// coordinator accepts that weakness; see internal/sync.
package docstore

import (
	"context"
	"encoding/json"
	"fmt"

	"fundledger/internal/ledger/models"
	"fundledger/pkg/domain"
)

// Collection names an addressable array inside the organization document.
type Collection string

const (
	Funders  Collection = "funders"
	Projects Collection = "projects"
	Incomes  Collection = "incomes"
	Expenses Collection = "expenses"
	Logs     Collection = "logs"
	Invites  Collection = "invites"
)

// Store is the remote document store boundary.
//
// Get returns the current authoritative document. ReplaceCollection rewrites
// one named array wholesale. Subscribe delivers full-document snapshots for
// every committed write, from this client and from others; the channel closes
// when ctx is done.
type Store interface {
	Get(ctx context.Context, orgID domain.OrgID) (*models.OrgDocument, error)
	Create(ctx context.Context, orgID domain.OrgID, doc *models.OrgDocument) error
	ReplaceCollection(ctx context.Context, orgID domain.OrgID, col Collection, value any) error
	Subscribe(ctx context.Context, orgID domain.OrgID) (<-chan *models.OrgDocument, error)
	Health(ctx context.Context) error
	Close() error
}

// CollectionValue extracts the named array from a document for a replace
// write.
func CollectionValue(doc *models.OrgDocument, col Collection) (any, error) {
	switch col {
	case Funders:
		return doc.Funders, nil
	case Projects:
		return doc.Projects, nil
	case Incomes:
		return doc.Incomes, nil
	case Expenses:
		return doc.Expenses, nil
	case Logs:
		return doc.Logs, nil
	case Invites:
		return doc.Invites, nil
	}
	return nil, fmt.Errorf("unknown collection %q", col)
}

// SetCollection installs a replace payload into a document. The payload goes
// through a JSON round-trip so reference-like values inside entries are
// normalized exactly as they would be coming off the wire.
func SetCollection(doc *models.OrgDocument, col Collection, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", col, err)
	}
	switch col {
	case Funders:
		doc.Funders = nil
		return json.Unmarshal(raw, &doc.Funders)
	case Projects:
		doc.Projects = nil
		return json.Unmarshal(raw, &doc.Projects)
	case Incomes:
		doc.Incomes = nil
		return json.Unmarshal(raw, &doc.Incomes)
	case Expenses:
		doc.Expenses = nil
		return json.Unmarshal(raw, &doc.Expenses)
	case Logs:
		doc.Logs = nil
		return json.Unmarshal(raw, &doc.Logs)
	case Invites:
		doc.Invites = nil
		return json.Unmarshal(raw, &doc.Invites)
	}
	return fmt.Errorf("unknown collection %q", col)
}
