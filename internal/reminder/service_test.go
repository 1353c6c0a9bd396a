package reminder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dailyecho/dailyecho/internal/config"
	"github.com/dailyecho/dailyecho/internal/store"
)

func TestCronSpec(t *testing.T) {
	tests := []struct {
		at      string
		want    string
		wantErr bool
	}{
		{at: "20:30", want: "30 20 * * *"},
		{at: "0:05", want: "5 0 * * *"},
		{at: "23:59", want: "59 23 * * *"},
		{at: "24:00", wantErr: true},
		{at: "12:60", wantErr: true},
		{at: "noon", wantErr: true},
		{at: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := cronSpec(tt.at)
		if tt.wantErr {
			if err == nil {
				t.Errorf("cronSpec(%q) expected error", tt.at)
			}
			continue
		}
		if err != nil {
			t.Errorf("cronSpec(%q): %v", tt.at, err)
			continue
		}
		if got != tt.want {
			t.Errorf("cronSpec(%q) = %q, want %q", tt.at, got, tt.want)
		}
	}
}

func TestRun_NudgesActiveUsers(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if _, err := s.AppendEvent(ctx, "42", "note today"); err != nil {
		t.Fatalf("append: %v", err)
	}

	// "43" also logged today but already generated a digest, so the
	// reminder must leave them alone.
	if _, err := s.AppendEvent(ctx, "43", "another note"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := s.UpsertUser(ctx, store.User{TgID: "43", FirstName: "Done"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.IncrementPostsGenerated(ctx, "43"); err != nil {
		t.Fatalf("increment: %v", err)
	}

	svc := NewService(config.ReminderConfig{Enabled: true, At: "20:30"}, s, time.UTC)
	var nudged []string
	svc.OnRemind = func(identity, text string) {
		if text == "" {
			t.Error("empty reminder text")
		}
		nudged = append(nudged, identity)
	}

	svc.run(ctx)

	if len(nudged) != 1 || nudged[0] != "42" {
		t.Errorf("nudged = %v, want [42]", nudged)
	}
}

func TestStart_Disabled(t *testing.T) {
	svc := NewService(config.ReminderConfig{Enabled: false}, nil, time.UTC)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("disabled start: %v", err)
	}
	if svc.cron != nil {
		t.Error("no cron should be scheduled when disabled")
	}
	svc.Stop()
}

func TestStart_BadTime(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()

	svc := NewService(config.ReminderConfig{Enabled: true, At: "25:99"}, s, time.UTC)
	if err := svc.Start(context.Background()); err == nil {
		t.Error("expected error for invalid time")
	}
}
