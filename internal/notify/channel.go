package notify

import "context"

// ChannelPublisher is the in-process queue used when no broker is configured
// and in tests. Publish never blocks: a full buffer drops the event, which is
// acceptable for a best-effort side-channel.
type ChannelPublisher struct {
	ch chan Event
}

func NewChannelPublisher(buffer int) *ChannelPublisher {
	if buffer <= 0 {
		buffer = 64
	}
	return &ChannelPublisher{ch: make(chan Event, buffer)}
}

func (p *ChannelPublisher) Publish(ctx context.Context, ev Event) error {
	select {
	case p.ch <- ev:
	default:
	}
	return nil
}

// Events exposes the consuming side for the worker.
func (p *ChannelPublisher) Events() <-chan Event { return p.ch }

func (p *ChannelPublisher) Close() error {
	close(p.ch)
	return nil
}
