package channel

import (
	"context"
	"net/http"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dailyecho/dailyecho/internal/bus"
	"github.com/dailyecho/dailyecho/internal/config"
)

type mockBot struct {
	sent    []tgbotapi.Chattable
	updates chan tgbotapi.Update
	stopped bool
}

func newMockBot() *mockBot {
	return &mockBot{updates: make(chan tgbotapi.Update, 10)}
}

func (m *mockBot) GetUpdatesChan(_ tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return m.updates
}

func (m *mockBot) StopReceivingUpdates() { m.stopped = true }

func (m *mockBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.sent = append(m.sent, c)
	return tgbotapi.Message{}, nil
}

func (m *mockBot) GetSelf() tgbotapi.User {
	return tgbotapi.User{UserName: "dailyecho_test_bot"}
}

func mockFactory(bot *mockBot) BotFactory {
	return func(token, apiEndpoint string, client *http.Client) (TelegramBot, error) {
		return bot, nil
	}
}

func TestBaseChannel_Name(t *testing.T) {
	b := bus.NewMessageBus(10)
	ch := NewBaseChannel("test", b, nil)
	if ch.Name() != "test" {
		t.Errorf("Name = %q, want test", ch.Name())
	}
}

func TestBaseChannel_IsAllowed(t *testing.T) {
	b := bus.NewMessageBus(10)

	open := NewBaseChannel("test", b, nil)
	if !open.IsAllowed("anyone") {
		t.Error("should allow anyone when allowFrom is empty")
	}

	restricted := NewBaseChannel("test", b, []string{"user1", "user2"})
	if !restricted.IsAllowed("user1") {
		t.Error("should allow user1")
	}
	if restricted.IsAllowed("user3") {
		t.Error("should reject user3")
	}
}

func TestNewTelegramChannel_NoToken(t *testing.T) {
	b := bus.NewMessageBus(10)
	if _, err := NewTelegramChannel(config.TelegramConfig{}, b); err == nil {
		t.Error("expected error for empty token")
	}
}

func TestNewTelegramChannel_Valid(t *testing.T) {
	b := bus.NewMessageBus(10)
	ch, err := NewTelegramChannel(config.TelegramConfig{Token: "fake-token"}, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ch.Name() != "telegram" {
		t.Errorf("Name = %q, want telegram", ch.Name())
	}
}

func TestTelegramChannel_HandleMessage(t *testing.T) {
	b := bus.NewMessageBus(10)
	ch, err := NewTelegramChannelWithFactory(config.TelegramConfig{Token: "fake-token"}, b, mockFactory(newMockBot()))
	if err != nil {
		t.Fatalf("create channel: %v", err)
	}

	ch.handleMessage(&tgbotapi.Message{
		MessageID: 7,
		From:      &tgbotapi.User{ID: 42, FirstName: "Ada", LastName: "L", UserName: "ada", IsBot: false},
		Chat:      &tgbotapi.Chat{ID: 42},
		Text:      "hello there",
		Date:      1700000000,
	})

	select {
	case msg := <-b.Inbound:
		if msg.SenderID != "42" || msg.ChatID != "42" {
			t.Errorf("ids = %s/%s, want 42/42", msg.SenderID, msg.ChatID)
		}
		if msg.Content != "hello there" {
			t.Errorf("content = %q", msg.Content)
		}
		if msg.MetaString("first_name") != "Ada" || msg.MetaString("username") != "ada" {
			t.Errorf("metadata = %v", msg.Metadata)
		}
		if msg.MetaBool("is_bot") {
			t.Error("is_bot should be false")
		}
	default:
		t.Fatal("no inbound message published")
	}
}

func TestTelegramChannel_HandleMessage_Filtered(t *testing.T) {
	b := bus.NewMessageBus(10)
	ch, err := NewTelegramChannelWithFactory(config.TelegramConfig{Token: "fake-token", AllowFrom: []string{"1"}}, b, mockFactory(newMockBot()))
	if err != nil {
		t.Fatalf("create channel: %v", err)
	}

	ch.handleMessage(&tgbotapi.Message{
		From: &tgbotapi.User{ID: 42},
		Chat: &tgbotapi.Chat{ID: 42},
		Text: "blocked",
	})

	select {
	case msg := <-b.Inbound:
		t.Fatalf("message from disallowed sender published: %+v", msg)
	default:
	}
}

func TestTelegramChannel_SendText(t *testing.T) {
	b := bus.NewMessageBus(10)
	bot := newMockBot()
	ch, err := NewTelegramChannelWithFactory(config.TelegramConfig{Token: "fake-token"}, b, mockFactory(bot))
	if err != nil {
		t.Fatalf("create channel: %v", err)
	}
	ch.SetBot(bot)

	if err := ch.Send(bus.OutboundMessage{ChatID: "42", Content: "hi"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(bot.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(bot.sent))
	}
	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("sent %T, want MessageConfig", bot.sent[0])
	}
	if msg.Text != "hi" || msg.ChatID != 42 {
		t.Errorf("message = %+v", msg)
	}
}

func TestTelegramChannel_SendLongTextChunks(t *testing.T) {
	b := bus.NewMessageBus(10)
	bot := newMockBot()
	ch, _ := NewTelegramChannelWithFactory(config.TelegramConfig{Token: "fake-token"}, b, mockFactory(bot))
	ch.SetBot(bot)

	long := strings.Repeat("line of generated digest text\n", 300)
	if err := ch.Send(bus.OutboundMessage{ChatID: "42", Content: long}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(bot.sent) < 2 {
		t.Errorf("sent %d messages for %d chars, want chunking", len(bot.sent), len(long))
	}
	for _, c := range bot.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok && len(msg.Text) > 4000 {
			t.Errorf("chunk of %d chars exceeds limit", len(msg.Text))
		}
	}
}

func TestTelegramChannel_SendDocument(t *testing.T) {
	b := bus.NewMessageBus(10)
	bot := newMockBot()
	ch, _ := NewTelegramChannelWithFactory(config.TelegramConfig{Token: "fake-token"}, b, mockFactory(bot))
	ch.SetBot(bot)

	err := ch.Send(bus.OutboundMessage{
		ChatID:   "42",
		Document: &bus.Document{Name: "your_events.csv", Data: []byte("Event,Date\n")},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(bot.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(bot.sent))
	}
	doc, ok := bot.sent[0].(tgbotapi.DocumentConfig)
	if !ok {
		t.Fatalf("sent %T, want DocumentConfig", bot.sent[0])
	}
	fileBytes, ok := doc.File.(tgbotapi.FileBytes)
	if !ok {
		t.Fatalf("file %T, want FileBytes", doc.File)
	}
	if fileBytes.Name != "your_events.csv" {
		t.Errorf("file name = %q", fileBytes.Name)
	}
}

func TestTelegramChannel_SendInvalidChatID(t *testing.T) {
	b := bus.NewMessageBus(10)
	bot := newMockBot()
	ch, _ := NewTelegramChannelWithFactory(config.TelegramConfig{Token: "fake-token"}, b, mockFactory(bot))
	ch.SetBot(bot)

	if err := ch.Send(bus.OutboundMessage{ChatID: "not-a-number", Content: "x"}); err == nil {
		t.Error("expected error for invalid chat id")
	}
}

func TestTelegramChannel_StartStop(t *testing.T) {
	b := bus.NewMessageBus(10)
	bot := newMockBot()
	ch, _ := NewTelegramChannelWithFactory(config.TelegramConfig{Token: "fake-token"}, b, mockFactory(bot))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := ch.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := ch.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if !bot.stopped {
		t.Error("bot not told to stop receiving updates")
	}
}
