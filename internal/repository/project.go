package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/dsgallups/rust-atlanta/internal/metrics"
	"github.com/dsgallups/rust-atlanta/internal/model"
)

// ErrProjectNotFound is returned when no project has the requested id.
var ErrProjectNotFound = errors.New("project not found")

const projectColumns = `id, name, description, repository_url, tags, created_at, updated_at`

func encodeTags(tags []string) any {
	if tags == nil {
		tags = []string{}
	}
	return pq.Array(tags)
}

// CreateProject inserts a staged project and returns the stored row.
func (r *Repository) CreateProject(ctx context.Context, c *model.ProjectChanges) (*model.Project, error) {
	if err := r.normalize(tableProjects, c, true); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO projects (name, description, repository_url, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + projectColumns

	start := time.Now()
	project, err := scanProject(r.pool.QueryRow(ctx, query,
		c.Name.Value(),
		c.Description.Value(),
		c.RepositoryURL.Value(),
		encodeTags(c.Tags.Value()),
		c.CreatedAt.Value(),
		c.UpdatedAt.Value(),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	r.recordWrite(tableProjects, metrics.OpCreate, start)
	return project, nil
}

// GetProject retrieves a project by id.
func (r *Repository) GetProject(ctx context.Context, id int64) (*model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	project, err := scanProject(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// ProjectFilter narrows ListProjects.
type ProjectFilter struct {
	Tag string
}

// ListProjects returns a page of projects, newest first.
func (r *Repository) ListProjects(ctx context.Context, filter ProjectFilter, cursor string, limit int) ([]*model.Project, string, error) {
	l := &listQuery{table: tableProjects, columns: projectColumns}
	if filter.Tag != "" {
		l.filter("? = ANY(tags)", filter.Tag)
	}
	return listPage(ctx, r.pool, l, cursor, limit, scanProject, func(p *model.Project) PaginationCursor {
		return PaginationCursor{ID: p.ID, CreatedAt: p.CreatedAt}
	})
}

// UpdateProject writes the explicitly set fields of c.
func (r *Repository) UpdateProject(ctx context.Context, c *model.ProjectChanges) (*model.Project, error) {
	if err := r.normalize(tableProjects, c, false); err != nil {
		return nil, err
	}

	var set updateSet
	setField(&set, "name", c.Name, nil)
	setField(&set, "description", c.Description, nil)
	setField(&set, "repository_url", c.RepositoryURL, nil)
	setField(&set, "tags", c.Tags, encodeTags)
	setField(&set, "updated_at", c.UpdatedAt, nil)

	start := time.Now()
	query, args := set.build(tableProjects, c.ID, projectColumns)
	project, err := scanProject(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	r.recordWrite(tableProjects, metrics.OpUpdate, start)
	return project, nil
}

// DeleteProject removes a project.
func (r *Repository) DeleteProject(ctx context.Context, id int64) error {
	start := time.Now()
	result, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrProjectNotFound
	}
	r.recordWrite(tableProjects, metrics.OpDelete, start)
	return nil
}

func scanProject(row rowScanner) (*model.Project, error) {
	var p model.Project
	var tags []string
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.RepositoryURL,
		pq.Array(&tags),
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}
	p.Tags = tags
	return &p, nil
}
