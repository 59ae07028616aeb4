package model

import (
	"time"

	"github.com/dsgallups/rust-atlanta/internal/presave"
)

// News is an article in the community news feed.
type News struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt"`
	Content     string     `json:"content"`
	PublishedAt *time.Time `json:"published_at"`
	Category    string     `json:"category"`
	ReadTime    int32      `json:"read_time"`
	Featured    bool       `json:"featured"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewsChanges is a staged write to the news table.
type NewsChanges struct {
	ID          int64
	Title       presave.Field[string]
	Excerpt     presave.Field[string]
	Content     presave.Field[string]
	PublishedAt presave.Field[*time.Time]
	Category    presave.Field[string]
	ReadTime    presave.Field[int32]
	Featured    presave.Field[bool]
	presave.Stamps
}

// PreSaveStamps implements presave.Entity.
func (c *NewsChanges) PreSaveStamps() *presave.Stamps { return &c.Stamps }

// Changes stages an update of n with every field unchanged.
func (n *News) Changes() *NewsChanges {
	return &NewsChanges{
		ID:          n.ID,
		Title:       presave.Unchanged(n.Title),
		Excerpt:     presave.Unchanged(n.Excerpt),
		Content:     presave.Unchanged(n.Content),
		PublishedAt: presave.Unchanged(n.PublishedAt),
		Category:    presave.Unchanged(n.Category),
		ReadTime:    presave.Unchanged(n.ReadTime),
		Featured:    presave.Unchanged(n.Featured),
		Stamps: presave.Stamps{
			CreatedAt: presave.Unchanged(n.CreatedAt),
			UpdatedAt: presave.Unchanged(n.UpdatedAt),
		},
	}
}

// NewsInput is the request body for creating or patching an article.
type NewsInput struct {
	Title       *string    `json:"title"`
	Excerpt     *string    `json:"excerpt"`
	Content     *string    `json:"content"`
	PublishedAt *time.Time `json:"published_at"`
	Category    *string    `json:"category"`
	ReadTime    *int32     `json:"read_time"`
	Featured    *bool      `json:"featured"`
	// UpdatedAt backdates an update. Only in-process callers can set it.
	UpdatedAt *time.Time `json:"-"`
}

// Stage copies the provided fields onto c.
func (in *NewsInput) Stage(c *NewsChanges) {
	if in.Title != nil {
		c.Title.Set(*in.Title)
	}
	if in.Excerpt != nil {
		c.Excerpt.Set(*in.Excerpt)
	}
	if in.Content != nil {
		c.Content.Set(*in.Content)
	}
	if in.PublishedAt != nil {
		published := in.PublishedAt.UTC()
		c.PublishedAt.Set(&published)
	}
	if in.Category != nil {
		c.Category.Set(*in.Category)
	}
	if in.ReadTime != nil {
		c.ReadTime.Set(*in.ReadTime)
	}
	if in.Featured != nil {
		c.Featured.Set(*in.Featured)
	}
	if in.UpdatedAt != nil {
		c.UpdatedAt.Set(storedTime(*in.UpdatedAt))
	}
}

// NewNews stages an article insert from in.
func NewNews(in *NewsInput) *NewsChanges {
	c := &NewsChanges{
		Title:       presave.Set(""),
		Excerpt:     presave.Set(""),
		Content:     presave.Set(""),
		PublishedAt: presave.Set[*time.Time](nil),
		Category:    presave.Set(""),
		ReadTime:    presave.Set[int32](0),
		Featured:    presave.Set(false),
	}
	in.Stage(c)
	c.UpdatedAt.Reset()
	return c
}
