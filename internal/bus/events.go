package bus

import "time"

// InboundMessage is one text message received from a channel.
type InboundMessage struct {
	Channel   string
	SenderID  string
	ChatID    string
	Content   string
	Timestamp time.Time
	Metadata  map[string]any
}

func (m *InboundMessage) SessionKey() string {
	return m.Channel + ":" + m.ChatID
}

// MetaString returns a string metadata field, or "" when absent.
func (m *InboundMessage) MetaString(key string) string {
	if m.Metadata == nil {
		return ""
	}
	if s, ok := m.Metadata[key].(string); ok {
		return s
	}
	return ""
}

// MetaBool returns a bool metadata field, or false when absent.
func (m *InboundMessage) MetaBool(key string) bool {
	if m.Metadata == nil {
		return false
	}
	if b, ok := m.Metadata[key].(bool); ok {
		return b
	}
	return false
}

// Document is a file payload delivered alongside or instead of text.
type Document struct {
	Name string
	Data []byte
}

type OutboundMessage struct {
	Channel  string
	ChatID   string
	Content  string
	Document *Document
	Metadata map[string]any
}
