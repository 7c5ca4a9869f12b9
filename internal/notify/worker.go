package notify

import (
	"context"
	"log/slog"
)

// Worker consumes queued events and fans each out to its recipients through a
// Sender. Delivery failures are logged and swallowed so a broken mail path
// never back-pressures the ledger.
type Worker struct {
	events <-chan Event
	sender Sender
	log    *slog.Logger
}

func NewWorker(events <-chan Event, sender Sender, log *slog.Logger) *Worker {
	return &Worker{events: events, sender: sender, log: log}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.events:
			if !ok {
				return nil
			}
			for _, recipient := range ev.Recipients {
				if err := w.sender.Send(ctx, recipient, ev); err != nil {
					w.log.Warn("notification delivery failed",
						"recipient", recipient, "org", ev.OrgID, "error", err)
				}
			}
		}
	}
}

// LogSender is the default Sender: it records the would-be delivery. Real
// deployments plug an email gateway in behind the same interface.
type LogSender struct {
	Log *slog.Logger
}

func (s LogSender) Send(ctx context.Context, recipient string, ev Event) error {
	s.Log.Info("notification",
		"recipient", recipient,
		"type", ev.Type,
		"amount", ev.Amount.String(),
		"currency", ev.Currency,
		"approvalsLink", ev.ApprovalsLink)
	return nil
}
