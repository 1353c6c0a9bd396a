package bus

import (
	"context"
	"testing"
	"time"
)

func TestSessionKey(t *testing.T) {
	m := InboundMessage{Channel: "telegram", ChatID: "42"}
	if got := m.SessionKey(); got != "telegram:42" {
		t.Errorf("SessionKey = %q, want telegram:42", got)
	}
}

func TestMetaAccessors(t *testing.T) {
	m := InboundMessage{Metadata: map[string]any{
		"first_name": "Ada",
		"is_bot":     true,
		"attempts":   7,
	}}

	if m.MetaString("first_name") != "Ada" {
		t.Errorf("MetaString = %q", m.MetaString("first_name"))
	}
	if m.MetaString("missing") != "" {
		t.Error("missing key should be empty")
	}
	if m.MetaString("attempts") != "" {
		t.Error("non-string value should be empty")
	}
	if !m.MetaBool("is_bot") {
		t.Error("MetaBool(is_bot) should be true")
	}

	var empty InboundMessage
	if empty.MetaString("x") != "" || empty.MetaBool("x") {
		t.Error("nil metadata should yield zero values")
	}
}

func TestDispatchOutbound(t *testing.T) {
	b := NewMessageBus(10)
	got := make(chan OutboundMessage, 1)
	b.SubscribeOutbound("telegram", func(msg OutboundMessage) { got <- msg })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.DispatchOutbound(ctx)

	b.Outbound <- OutboundMessage{Channel: "telegram", ChatID: "42", Content: "hi"}

	select {
	case msg := <-got:
		if msg.Content != "hi" {
			t.Errorf("content = %q", msg.Content)
		}
	case <-time.After(time.Second):
		t.Fatal("outbound message never dispatched")
	}
}

func TestDispatchOutbound_NoSubscriber(t *testing.T) {
	b := NewMessageBus(10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.DispatchOutbound(ctx)

	// A message for an unknown channel is dropped, not fatal.
	b.Outbound <- OutboundMessage{Channel: "nowhere", Content: "lost"}
	time.Sleep(10 * time.Millisecond)
}
