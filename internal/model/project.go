package model

import (
	"time"

	"github.com/dsgallups/rust-atlanta/internal/presave"
)

// Project is a community project showcased on the site.
type Project struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	RepositoryURL string    `json:"repository_url"`
	Tags          []string  `json:"tags"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProjectChanges is a staged write to the projects table.
type ProjectChanges struct {
	ID            int64
	Name          presave.Field[string]
	Description   presave.Field[string]
	RepositoryURL presave.Field[string]
	Tags          presave.Field[[]string]
	presave.Stamps
}

// PreSaveStamps implements presave.Entity.
func (c *ProjectChanges) PreSaveStamps() *presave.Stamps { return &c.Stamps }

// Changes stages an update of p with every field unchanged.
func (p *Project) Changes() *ProjectChanges {
	return &ProjectChanges{
		ID:            p.ID,
		Name:          presave.Unchanged(p.Name),
		Description:   presave.Unchanged(p.Description),
		RepositoryURL: presave.Unchanged(p.RepositoryURL),
		Tags:          presave.Unchanged(p.Tags),
		Stamps: presave.Stamps{
			CreatedAt: presave.Unchanged(p.CreatedAt),
			UpdatedAt: presave.Unchanged(p.UpdatedAt),
		},
	}
}

// ProjectInput is the request body for creating or patching a project.
// Nil fields are left untouched on patch.
type ProjectInput struct {
	Name          *string   `json:"name"`
	Description   *string   `json:"description"`
	RepositoryURL *string   `json:"repository_url"`
	Tags          *[]string `json:"tags"`
	// UpdatedAt backdates an update. Only in-process callers can set it.
	UpdatedAt *time.Time `json:"-"`
}

// Stage copies the provided fields onto c.
func (in *ProjectInput) Stage(c *ProjectChanges) {
	if in.Name != nil {
		c.Name.Set(*in.Name)
	}
	if in.Description != nil {
		c.Description.Set(*in.Description)
	}
	if in.RepositoryURL != nil {
		c.RepositoryURL.Set(*in.RepositoryURL)
	}
	if in.Tags != nil {
		c.Tags.Set(*in.Tags)
	}
	if in.UpdatedAt != nil {
		c.UpdatedAt.Set(storedTime(*in.UpdatedAt))
	}
}

// NewProject stages a project insert from in.
func NewProject(in *ProjectInput) *ProjectChanges {
	c := &ProjectChanges{
		Name:          presave.Set(""),
		Description:   presave.Set(""),
		RepositoryURL: presave.Set(""),
		Tags:          presave.Set([]string{}),
	}
	in.Stage(c)
	c.UpdatedAt.Reset()
	return c
}
