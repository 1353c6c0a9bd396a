// Package gateway wires the transport, store, router and scheduler
// together and runs the inbound processing loop.
package gateway

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dailyecho/dailyecho/internal/bus"
	"github.com/dailyecho/dailyecho/internal/channel"
	"github.com/dailyecho/dailyecho/internal/command"
	"github.com/dailyecho/dailyecho/internal/composer"
	"github.com/dailyecho/dailyecho/internal/config"
	"github.com/dailyecho/dailyecho/internal/genai"
	"github.com/dailyecho/dailyecho/internal/reminder"
	"github.com/dailyecho/dailyecho/internal/store"
)

const Version = "v1.0"

// Options for creating a Gateway with custom collaborators (for testing).
type Options struct {
	Generator  composer.Generator
	SignalChan chan os.Signal
}

type Gateway struct {
	cfg        *config.Config
	bus        *bus.MessageBus
	store      *store.Store
	router     *command.Router
	channels   *channel.ChannelManager
	reminder   *reminder.Service
	generator  composer.Generator
	loc        *time.Location
	signalChan chan os.Signal
}

// New creates a Gateway with default collaborators. A store that cannot
// be opened is the one startup failure that must abort the process; the
// error is returned to main for that.
func New(cfg *config.Config) (*Gateway, error) {
	return NewWithOptions(cfg, Options{})
}

func NewWithOptions(cfg *config.Config, opts Options) (*Gateway, error) {
	g := &Gateway{cfg: cfg, signalChan: opts.SignalChan}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	g.loc = loc

	g.bus = bus.NewMessageBus(config.DefaultBufSize)

	st, err := store.Open(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	g.store = st

	g.generator = opts.Generator
	if g.generator == nil {
		g.generator = genai.NewClient(cfg.Gemini)
	}

	g.router = command.NewRouter()

	channels, err := channel.NewChannelManager(cfg.Telegram, g.bus)
	if err != nil {
		_ = g.store.Close()
		return nil, err
	}
	g.channels = channels

	g.reminder = reminder.NewService(cfg.Reminder, g.store, loc)
	g.reminder.OnRemind = func(identity, text string) {
		// Private Telegram chats share the sender's ID as chat ID.
		g.bus.Outbound <- bus.OutboundMessage{
			Channel: "telegram",
			ChatID:  identity,
			Content: text,
		}
	}

	return g, nil
}

func (g *Gateway) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go g.bus.DispatchOutbound(ctx)

	if err := g.channels.StartAll(ctx); err != nil {
		return fmt.Errorf("start channels: %w", err)
	}
	log.Printf("[gateway] channels started: %v", g.channels.EnabledChannels())

	if err := g.reminder.Start(ctx); err != nil {
		log.Printf("[gateway] reminder start warning: %v", err)
	}

	go g.processLoop(ctx)

	log.Printf("[gateway] running")

	// Use injected signal channel for testing, or create default
	sigCh := g.signalChan
	if sigCh == nil {
		sigCh = make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	}
	<-sigCh

	log.Printf("[gateway] shutting down...")
	return g.Shutdown()
}

func (g *Gateway) processLoop(ctx context.Context) {
	for {
		select {
		case msg := <-g.bus.Inbound:
			g.handleInbound(ctx, msg)
		case <-ctx.Done():
			return
		}
	}
}

func (g *Gateway) handleInbound(ctx context.Context, msg bus.InboundMessage) {
	log.Printf("[gateway] inbound from %s/%s: %s", msg.Channel, msg.SenderID, truncate(msg.Content, 80))

	sender := command.Sender{
		ID:        msg.SenderID,
		FirstName: msg.MetaString("first_name"),
		LastName:  msg.MetaString("last_name"),
		Username:  msg.MetaString("username"),
		IsBot:     msg.MetaBool("is_bot"),
	}

	deps := command.Deps{
		Store:     g.store,
		Generator: g.generator,
		Location:  g.loc,
		Version:   Version,
		Notify: func(text string) {
			g.bus.Outbound <- bus.OutboundMessage{
				Channel: msg.Channel,
				ChatID:  msg.ChatID,
				Content: text,
			}
		},
	}

	reply, handled := g.router.Dispatch(ctx, sender, msg.Content, deps)
	if !handled {
		log.Printf("[gateway] ignoring unknown command from %s", msg.SenderID)
		return
	}
	if reply.Text == "" && reply.Document == nil {
		return
	}

	out := bus.OutboundMessage{
		Channel: msg.Channel,
		ChatID:  msg.ChatID,
		Content: reply.Text,
	}
	if reply.Document != nil {
		out.Document = &bus.Document{Name: reply.Document.Name, Data: reply.Document.Data}
	}
	g.bus.Outbound <- out
}

func (g *Gateway) Shutdown() error {
	g.reminder.Stop()
	_ = g.channels.StopAll()
	if err := g.store.Close(); err != nil {
		log.Printf("[gateway] store close warning: %v", err)
	}
	log.Printf("[gateway] stopped")
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
