// Package command maps inbound message text to one of the bot's fixed
// operations. Handlers are stateless; every collaborator arrives through
// Deps and every failure is absorbed into a fixed reply text.
package command

import (
	"context"
	"strings"
	"time"

	"github.com/dailyecho/dailyecho/internal/composer"
	"github.com/dailyecho/dailyecho/internal/store"
)

// Sender is the transport-provided identity of the message author.
type Sender struct {
	ID        string
	FirstName string
	LastName  string
	Username  string
	IsBot     bool
}

// Document is a file attachment reply.
type Document struct {
	Name string
	Data []byte
}

// Reply is what a handler sends back: text, a document, or both.
type Reply struct {
	Text     string
	Document *Document
}

// Deps are the collaborators a handler may use. Nothing is read from
// package globals.
type Deps struct {
	Store     *store.Store
	Generator composer.Generator
	Location  *time.Location
	Now       func() time.Time
	Version   string
	// Notify sends an immediate interim text to the sender, ahead of the
	// handler's final reply. May be nil.
	Notify func(text string)
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) location() *time.Location {
	if d.Location != nil {
		return d.Location
	}
	return time.UTC
}

// Handler executes one command for one sender.
type Handler func(ctx context.Context, sender Sender, args string, deps Deps) Reply

type Router struct {
	handlers map[string]Handler
}

func NewRouter() *Router {
	return &Router{handlers: map[string]Handler{
		"start":    handleStart,
		"generate": handleGenerate,
		"clear":    handleClear,
		"stats":    handleStats,
		"history":  handleHistory,
		"settings": handleSettings,
		"export":   handleExport,
		"help":     handleHelp,
		"info":     handleInfo,
	}}
}

// Dispatch routes one inbound text. Plain text is logged as a note;
// a recognized /command runs its handler; an unknown /command is ignored
// and handled reports false.
func (r *Router) Dispatch(ctx context.Context, sender Sender, text string, deps Deps) (reply Reply, handled bool) {
	if !strings.HasPrefix(text, "/") {
		return handleNote(ctx, sender, text, deps), true
	}

	name, args := splitCommand(text)
	h, ok := r.handlers[name]
	if !ok {
		return Reply{}, false
	}
	return h(ctx, sender, args, deps), true
}

// splitCommand separates the command token from its arguments. The token
// is lowercased and a trailing @botname mention is stripped, so
// "/Settings@DailyEchoBot tone calm" routes like "/settings tone calm".
func splitCommand(text string) (name, args string) {
	rest := strings.TrimPrefix(text, "/")
	if i := strings.IndexAny(rest, " \t\n"); i >= 0 {
		name, args = rest[:i], strings.TrimSpace(rest[i+1:])
	} else {
		name = rest
	}
	if i := strings.Index(name, "@"); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(name), args
}
