package bus

import (
	"context"
	"log"
	"sync"
)

// MessageBus connects channels to the gateway process loop. Inbound is
// consumed by the gateway; Outbound is fanned out to the subscriber
// registered for the message's channel name.
type MessageBus struct {
	Inbound  chan InboundMessage
	Outbound chan OutboundMessage

	mu          sync.RWMutex
	subscribers map[string]func(OutboundMessage)
}

func NewMessageBus(bufSize int) *MessageBus {
	return &MessageBus{
		Inbound:     make(chan InboundMessage, bufSize),
		Outbound:    make(chan OutboundMessage, bufSize),
		subscribers: make(map[string]func(OutboundMessage)),
	}
}

func (b *MessageBus) SubscribeOutbound(channel string, fn func(OutboundMessage)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[channel] = fn
}

// DispatchOutbound delivers outbound messages to their channel's
// subscriber until ctx is cancelled. Run it in its own goroutine.
func (b *MessageBus) DispatchOutbound(ctx context.Context) {
	for {
		select {
		case msg := <-b.Outbound:
			b.mu.RLock()
			fn := b.subscribers[msg.Channel]
			b.mu.RUnlock()
			if fn == nil {
				log.Printf("[bus] no subscriber for channel %s, dropping message", msg.Channel)
				continue
			}
			fn(msg)
		case <-ctx.Done():
			return
		}
	}
}
