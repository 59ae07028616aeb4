package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dsgallups/rust-atlanta/internal/metrics"
	"github.com/dsgallups/rust-atlanta/internal/model"
)

// ErrEventNotFound is returned when no event has the requested id.
var ErrEventNotFound = errors.New("event not found")

const eventColumns = `id, title, description, date, location, event_type, created_at, updated_at`

// CreateEvent inserts a staged event and returns the stored row.
func (r *Repository) CreateEvent(ctx context.Context, c *model.EventChanges) (*model.Event, error) {
	if err := r.normalize(tableEvents, c, true); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO events (title, description, date, location, event_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + eventColumns

	start := time.Now()
	event, err := scanEvent(r.pool.QueryRow(ctx, query,
		c.Title.Value(),
		c.Description.Value(),
		c.Date.Value(),
		c.Location.Value(),
		c.EventType.Value(),
		c.CreatedAt.Value(),
		c.UpdatedAt.Value(),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	r.recordWrite(tableEvents, metrics.OpCreate, start)
	return event, nil
}

// GetEvent retrieves an event by id.
func (r *Repository) GetEvent(ctx context.Context, id int64) (*model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEvent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// EventFilter narrows ListEvents.
type EventFilter struct {
	EventType string
	After     *time.Time
}

// ListEvents returns a page of events, newest first.
func (r *Repository) ListEvents(ctx context.Context, filter EventFilter, cursor string, limit int) ([]*model.Event, string, error) {
	l := &listQuery{table: tableEvents, columns: eventColumns}
	if filter.EventType != "" {
		l.filter("event_type = ?", filter.EventType)
	}
	if filter.After != nil {
		l.filter("date >= ?", *filter.After)
	}
	return listPage(ctx, r.pool, l, cursor, limit, scanEvent, func(e *model.Event) PaginationCursor {
		return PaginationCursor{ID: e.ID, CreatedAt: e.CreatedAt}
	})
}

// UpdateEvent writes the explicitly set fields of c.
func (r *Repository) UpdateEvent(ctx context.Context, c *model.EventChanges) (*model.Event, error) {
	if err := r.normalize(tableEvents, c, false); err != nil {
		return nil, err
	}

	var set updateSet
	setField(&set, "title", c.Title, nil)
	setField(&set, "description", c.Description, nil)
	setField(&set, "date", c.Date, nil)
	setField(&set, "location", c.Location, nil)
	setField(&set, "event_type", c.EventType, nil)
	setField(&set, "updated_at", c.UpdatedAt, nil)

	start := time.Now()
	query, args := set.build(tableEvents, c.ID, eventColumns)
	event, err := scanEvent(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	r.recordWrite(tableEvents, metrics.OpUpdate, start)
	return event, nil
}

// DeleteEvent removes an event.
func (r *Repository) DeleteEvent(ctx context.Context, id int64) error {
	start := time.Now()
	result, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	r.recordWrite(tableEvents, metrics.OpDelete, start)
	return nil
}

func scanEvent(row rowScanner) (*model.Event, error) {
	var e model.Event
	err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Description,
		&e.Date,
		&e.Location,
		&e.EventType,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
