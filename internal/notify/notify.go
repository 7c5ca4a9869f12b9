// Package notify is the fire-and-forget side-channel that tells
// administrators about pending transactions awaiting approval.
//
// Delivery is decoupled from the financial mutation through a queue: the
// ledger publishes an event, a worker consumes and delivers it. Publish and
// delivery failures are logged and swallowed; they are never surfaced to the
// user whose transaction triggered them.
package notify

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Event is the pending-transaction notification payload, addressed to every
// administrative member of the organization.
type Event struct {
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	ApprovalsLink string          `json:"approvalsLink"`
	OrgID         string          `json:"orgId"`
	Recipients    []string        `json:"recipients"`
}

// Publisher enqueues notification events.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Sender performs the actual delivery to one recipient.
type Sender interface {
	Send(ctx context.Context, recipient string, ev Event) error
}
