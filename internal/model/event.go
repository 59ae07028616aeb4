package model

import (
	"time"

	"github.com/dsgallups/rust-atlanta/internal/presave"
)

// Event is a scheduled meetup.
type Event struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	EventType   string    `json:"event_type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EventChanges is a staged write to the events table.
type EventChanges struct {
	ID          int64
	Title       presave.Field[string]
	Description presave.Field[string]
	Date        presave.Field[time.Time]
	Location    presave.Field[string]
	EventType   presave.Field[string]
	presave.Stamps
}

// PreSaveStamps implements presave.Entity.
func (c *EventChanges) PreSaveStamps() *presave.Stamps { return &c.Stamps }

// Changes stages an update of e with every field unchanged.
func (e *Event) Changes() *EventChanges {
	return &EventChanges{
		ID:          e.ID,
		Title:       presave.Unchanged(e.Title),
		Description: presave.Unchanged(e.Description),
		Date:        presave.Unchanged(e.Date),
		Location:    presave.Unchanged(e.Location),
		EventType:   presave.Unchanged(e.EventType),
		Stamps: presave.Stamps{
			CreatedAt: presave.Unchanged(e.CreatedAt),
			UpdatedAt: presave.Unchanged(e.UpdatedAt),
		},
	}
}

// EventInput is the request body for creating or patching an event.
type EventInput struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Date        *time.Time `json:"date"`
	Location    *string    `json:"location"`
	EventType   *string    `json:"event_type"`
	// UpdatedAt backdates an update. Only in-process callers can set it.
	UpdatedAt *time.Time `json:"-"`
}

// Stage copies the provided fields onto c.
func (in *EventInput) Stage(c *EventChanges) {
	if in.Title != nil {
		c.Title.Set(*in.Title)
	}
	if in.Description != nil {
		c.Description.Set(*in.Description)
	}
	if in.Date != nil {
		c.Date.Set(in.Date.UTC())
	}
	if in.Location != nil {
		c.Location.Set(*in.Location)
	}
	if in.EventType != nil {
		c.EventType.Set(*in.EventType)
	}
	if in.UpdatedAt != nil {
		c.UpdatedAt.Set(storedTime(*in.UpdatedAt))
	}
}

// NewEvent stages an event insert from in.
func NewEvent(in *EventInput) *EventChanges {
	c := &EventChanges{
		Title:       presave.Set(""),
		Description: presave.Set(""),
		Date:        presave.Set(time.Time{}),
		Location:    presave.Set(""),
		EventType:   presave.Set(""),
	}
	in.Stage(c)
	c.UpdatedAt.Reset()
	return c
}
