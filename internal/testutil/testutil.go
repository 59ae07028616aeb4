package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/dsgallups/rust-atlanta/internal/migrate"
	"github.com/dsgallups/rust-atlanta/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema rolls every migration back and applies them again.
func ResetSchema(databaseURL string) error {
	runner, err := migrate.Open(databaseURL, nil)
	if err != nil {
		return err
	}
	defer runner.Close()

	if err := runner.Down(); err != nil {
		return err
	}
	return runner.Up()
}

// TruncateAll empties every application table and resets serial ids.
func TruncateAll(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `TRUNCATE users, user_auths, projects, events, news RESTART IDENTITY CASCADE`)
	if err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Doubles
// ============================================================================

// SequenceTokens is a deterministic token source: tok-1, tok-2, ...
// Err, when set, is returned instead of a token.
type SequenceTokens struct {
	Prefix string
	Err    error

	mu sync.Mutex
	n  int
}

// Generate returns the next token in the sequence.
func (s *SequenceTokens) Generate() (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	prefix := s.Prefix
	if prefix == "" {
		prefix = "tok-"
	}
	return fmt.Sprintf("%s%d", prefix, s.n), nil
}

// Issued reports how many tokens were generated.
func (s *SequenceTokens) Issued() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

// FixedClock is a manually advanced clock.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock creates a clock stopped at t.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{now: t.UTC()}
}

// Now reports the current fixed time.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// ============================================================================
// Test Data Factories
// ============================================================================

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// NewTestProjectInput creates project input with sensible defaults.
func NewTestProjectInput(name string) *model.ProjectInput {
	desc := "A project about " + name
	repo := "https://github.com/example/" + name
	tags := []string{"rust", "community"}
	return &model.ProjectInput{
		Name:          &name,
		Description:   &desc,
		RepositoryURL: &repo,
		Tags:          &tags,
	}
}

// NewTestEventInput creates event input scheduled a week from now.
func NewTestEventInput(title string) *model.EventInput {
	desc := "Monthly meetup: " + title
	date := time.Now().UTC().Add(7 * 24 * time.Hour).Truncate(time.Second)
	location := "Atlanta Tech Village"
	eventType := "meetup"
	return &model.EventInput{
		Title:       &title,
		Description: &desc,
		Date:        &date,
		Location:    &location,
		EventType:   &eventType,
	}
}

// NewTestNewsInput creates an unpublished article input.
func NewTestNewsInput(title string) *model.NewsInput {
	excerpt := "Excerpt of " + title
	content := "Content of " + title
	category := "announcements"
	readTime := int32(4)
	featured := false
	return &model.NewsInput{
		Title:    &title,
		Excerpt:  &excerpt,
		Content:  &content,
		Category: &category,
		ReadTime: &readTime,
		Featured: &featured,
	}
}
