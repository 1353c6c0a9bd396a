package channel

import (
	"context"

	"github.com/dailyecho/dailyecho/internal/bus"
)

// Channel is one inbound/outbound message transport.
type Channel interface {
	Name() string
	Start(ctx context.Context) error
	Stop() error
	Send(msg bus.OutboundMessage) error
}

// BaseChannel carries the name, bus handle and sender allow-list shared
// by every transport.
type BaseChannel struct {
	name      string
	bus       *bus.MessageBus
	allowFrom map[string]bool
}

func NewBaseChannel(name string, b *bus.MessageBus, allowFrom []string) BaseChannel {
	var allowed map[string]bool
	if len(allowFrom) > 0 {
		allowed = make(map[string]bool, len(allowFrom))
		for _, id := range allowFrom {
			allowed[id] = true
		}
	}
	return BaseChannel{name: name, bus: b, allowFrom: allowed}
}

func (b *BaseChannel) Name() string {
	return b.name
}

// IsAllowed reports whether senderID passes the allow-list. An empty
// list admits everyone.
func (b *BaseChannel) IsAllowed(senderID string) bool {
	if b.allowFrom == nil {
		return true
	}
	return b.allowFrom[senderID]
}
