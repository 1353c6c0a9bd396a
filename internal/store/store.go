package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var (
	// ErrEmptyText rejects note appends with no content.
	ErrEmptyText = errors.New("note text is empty")
	// ErrUnknownField rejects settings updates outside tone/platforms.
	ErrUnknownField = errors.New("unknown settings field")
	// ErrNotFound is returned when a profile does not exist.
	ErrNotFound = errors.New("user not found")
)

const (
	DefaultTone      = "neutral"
	DefaultPlatforms = "LinkedIn,Facebook,Twitter"
)

// User is one registered sender profile, keyed by the transport identity.
type User struct {
	TgID           string
	FirstName      string
	LastName       string
	IsBot          bool
	Username       string
	Tone           string
	Platforms      string
	PostsGenerated int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Event is one logged free-text note. Never updated after insert.
type Event struct {
	ID        string
	TgID      string
	Text      string
	CreatedAt time.Time
}

type Store struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.configure(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("sqlite pragma %q: %w", p, err)
		}
	}
	return nil
}

func (s *Store) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			tg_id TEXT PRIMARY KEY,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			is_bot INTEGER NOT NULL DEFAULT 0,
			username TEXT NOT NULL DEFAULT '',
			tone TEXT NOT NULL DEFAULT 'neutral',
			platforms TEXT NOT NULL DEFAULT 'LinkedIn,Facebook,Twitter',
			posts_generated INTEGER NOT NULL DEFAULT 0,
			last_generated_at INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			tg_id TEXT NOT NULL,
			text TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_owner_created
			ON events(tg_id, created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// UpsertUser creates the profile if absent and returns the stored row.
// An existing profile is left entirely untouched, including settings and
// counters; re-registration is the expected common case.
func (s *Store) UpsertUser(ctx context.Context, u User) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tone := u.Tone
	if tone == "" {
		tone = DefaultTone
	}
	platforms := u.Platforms
	if platforms == "" {
		platforms = DefaultPlatforms
	}
	nowMs := s.now().UTC().UnixMilli()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (tg_id, first_name, last_name, is_bot, username, tone, platforms, posts_generated, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
		ON CONFLICT(tg_id) DO NOTHING`,
		u.TgID, u.FirstName, u.LastName, boolToInt(u.IsBot), u.Username, tone, platforms, nowMs, nowMs)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return s.getUserLocked(ctx, u.TgID)
}

func (s *Store) GetUser(ctx context.Context, tgID string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getUserLocked(ctx, tgID)
}

func (s *Store) getUserLocked(ctx context.Context, tgID string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT tg_id, first_name, last_name, is_bot, username, tone, platforms, posts_generated, created_at, updated_at
		FROM users WHERE tg_id = ?`, tgID)

	var u User
	var isBot int
	var createdMs, updatedMs int64
	err := row.Scan(&u.TgID, &u.FirstName, &u.LastName, &isBot, &u.Username,
		&u.Tone, &u.Platforms, &u.PostsGenerated, &createdMs, &updatedMs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.IsBot = isBot != 0
	u.CreatedAt = time.UnixMilli(createdMs).UTC()
	u.UpdatedAt = time.UnixMilli(updatedMs).UTC()
	return &u, nil
}

// AppendEvent inserts a new note owned by tgID, timestamped now.
func (s *Store) AppendEvent(ctx context.Context, tgID, text string) (*Event, error) {
	return s.appendEventAt(ctx, tgID, text, s.now())
}

func (s *Store) appendEventAt(ctx context.Context, tgID, text string, at time.Time) (*Event, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ev := Event{
		ID:        uuid.NewString(),
		TgID:      tgID,
		Text:      text,
		CreatedAt: at.UTC(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, tg_id, text, created_at) VALUES (?, ?, ?, ?)`,
		ev.ID, ev.TgID, ev.Text, ev.CreatedAt.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("append event: %w", err)
	}
	return &ev, nil
}

// DayWindow returns the inclusive [midnight, 23:59:59.999] range of the
// calendar day containing t, in loc. Both ends are anchored to the same
// calendar date, so the window stays correct on DST transition days that
// are not 24 hours long.
func DayWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, 999_000_000, loc)
	return start, end
}

// EventsOnDay returns all notes owned by tgID created within the calendar
// day containing `day` in loc, boundaries inclusive. Order unspecified.
func (s *Store) EventsOnDay(ctx context.Context, tgID string, day time.Time, loc *time.Location) ([]Event, error) {
	start, end := DayWindow(day, loc)

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tg_id, text, created_at FROM events
		WHERE tg_id = ? AND created_at BETWEEN ? AND ?`,
		tgID, start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("events on day: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// RecentEvents returns up to limit notes, most recent first.
func (s *Store) RecentEvents(ctx context.Context, tgID string, limit int) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tg_id, text, created_at FROM events
		WHERE tg_id = ? ORDER BY created_at DESC LIMIT ?`, tgID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// AllEvents returns every note owned by tgID, oldest first.
func (s *Store) AllEvents(ctx context.Context, tgID string) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tg_id, text, created_at FROM events
		WHERE tg_id = ? ORDER BY created_at ASC`, tgID)
	if err != nil {
		return nil, fmt.Errorf("all events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ClearEvents deletes all notes owned by tgID and reports how many.
func (s *Store) ClearEvents(ctx context.Context, tgID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE tg_id = ?`, tgID)
	if err != nil {
		return 0, fmt.Errorf("clear events: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear events: %w", err)
	}
	return n, nil
}

func (s *Store) CountEvents(ctx context.Context, tgID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE tg_id = ?`, tgID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// IncrementPostsGenerated bumps the digest counter by exactly one and
// records when the digest was produced.
func (s *Store) IncrementPostsGenerated(ctx context.Context, tgID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	nowMs := s.now().UTC().UnixMilli()
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET posts_generated = posts_generated + 1, last_generated_at = ?, updated_at = ?
		WHERE tg_id = ?`, nowMs, nowMs, tgID)
	if err != nil {
		return fmt.Errorf("increment posts generated: %w", err)
	}
	return nil
}

// UpdateSetting persists one of the two mutable settings fields.
func (s *Store) UpdateSetting(ctx context.Context, tgID, field, value string) error {
	var column string
	switch field {
	case "tone":
		column = "tone"
	case "platforms":
		column = "platforms"
	default:
		return ErrUnknownField
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET `+column+` = ?, updated_at = ? WHERE tg_id = ?`,
		value, s.now().UTC().UnixMilli(), tgID)
	if err != nil {
		return fmt.Errorf("update setting %s: %w", field, err)
	}
	return nil
}

// ActiveWithoutDigest lists identities that logged at least one note in
// the day window of `day` but have not generated a digest inside that
// window. Feeds the evening digest reminder; a sender who never
// registered still qualifies.
func (s *Store) ActiveWithoutDigest(ctx context.Context, day time.Time, loc *time.Location) ([]string, error) {
	start, end := DayWindow(day, loc)

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT e.tg_id FROM events e
		LEFT JOIN users u ON u.tg_id = e.tg_id
		WHERE e.created_at BETWEEN ? AND ?
		AND (u.tg_id IS NULL OR u.last_generated_at < ? OR u.last_generated_at > ?)
		ORDER BY e.tg_id`,
		start.UnixMilli(), end.UnixMilli(), start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("active without digest: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("active without digest: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var ev Event
		var createdMs int64
		if err := rows.Scan(&ev.ID, &ev.TgID, &ev.Text, &createdMs); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.CreatedAt = time.UnixMilli(createdMs).UTC()
		events = append(events, ev)
	}
	return events, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
