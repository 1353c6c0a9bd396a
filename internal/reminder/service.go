// Package reminder nudges users who logged notes today to generate their
// digest before the day closes.
package reminder

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	rcron "github.com/robfig/cron/v3"

	"github.com/dailyecho/dailyecho/internal/config"
	"github.com/dailyecho/dailyecho/internal/store"
)

const reminderText = "You logged some events today. Run /generate to turn them into posts before the day ends!"

type Service struct {
	cfg   config.ReminderConfig
	store *store.Store
	loc   *time.Location
	cron  *rcron.Cron

	// OnRemind delivers one nudge to an identity. Set by the gateway.
	OnRemind func(identity, text string)
}

func NewService(cfg config.ReminderConfig, s *store.Store, loc *time.Location) *Service {
	return &Service{cfg: cfg, store: s, loc: loc}
}

func (s *Service) Start(ctx context.Context) error {
	if !s.cfg.Enabled {
		log.Printf("[reminder] disabled")
		return nil
	}

	spec, err := cronSpec(s.cfg.At)
	if err != nil {
		return err
	}

	s.cron = rcron.New(rcron.WithLocation(s.loc))
	if _, err := s.cron.AddFunc(spec, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("register reminder job: %w", err)
	}
	s.cron.Start()
	log.Printf("[reminder] scheduled daily at %s (%s)", s.cfg.At, s.loc)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Service) run(ctx context.Context) {
	ids, err := s.store.ActiveWithoutDigest(ctx, time.Now(), s.loc)
	if err != nil {
		log.Printf("[reminder] query active users: %v", err)
		return
	}
	if s.OnRemind == nil {
		return
	}
	for _, id := range ids {
		s.OnRemind(id, reminderText)
	}
	log.Printf("[reminder] nudged %d user(s)", len(ids))
}

// cronSpec turns "HH:MM" into a standard daily cron expression.
func cronSpec(at string) (string, error) {
	parts := strings.SplitN(at, ":", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid reminder time %q, want HH:MM", at)
	}
	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid reminder time %q, want HH:MM", at)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
