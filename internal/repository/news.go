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

// ErrNewsNotFound is returned when no article has the requested id.
var ErrNewsNotFound = errors.New("news not found")

const newsColumns = `id, title, excerpt, content, published_at, category, read_time, featured, created_at, updated_at`

// CreateNews inserts a staged article and returns the stored row.
func (r *Repository) CreateNews(ctx context.Context, c *model.NewsChanges) (*model.News, error) {
	if err := r.normalize(tableNews, c, true); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO news (title, excerpt, content, published_at, category, read_time, featured, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + newsColumns

	start := time.Now()
	news, err := scanNews(r.pool.QueryRow(ctx, query,
		c.Title.Value(),
		c.Excerpt.Value(),
		c.Content.Value(),
		c.PublishedAt.Value(),
		c.Category.Value(),
		c.ReadTime.Value(),
		c.Featured.Value(),
		c.CreatedAt.Value(),
		c.UpdatedAt.Value(),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create news: %w", err)
	}
	r.recordWrite(tableNews, metrics.OpCreate, start)
	return news, nil
}

// GetNews retrieves an article by id.
func (r *Repository) GetNews(ctx context.Context, id int64) (*model.News, error) {
	query := `SELECT ` + newsColumns + ` FROM news WHERE id = $1`

	news, err := scanNews(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNewsNotFound
		}
		return nil, fmt.Errorf("failed to get news: %w", err)
	}
	return news, nil
}

// NewsFilter narrows ListNews.
type NewsFilter struct {
	Category      string
	FeaturedOnly  bool
	PublishedAsOf *time.Time
}

// ListNews returns a page of articles, newest first.
func (r *Repository) ListNews(ctx context.Context, filter NewsFilter, cursor string, limit int) ([]*model.News, string, error) {
	l := &listQuery{table: tableNews, columns: newsColumns}
	if filter.Category != "" {
		l.filter("category = ?", filter.Category)
	}
	if filter.FeaturedOnly {
		l.filter("featured = ?", true)
	}
	if filter.PublishedAsOf != nil {
		l.filter("published_at <= ?", *filter.PublishedAsOf)
	}
	return listPage(ctx, r.pool, l, cursor, limit, scanNews, func(n *model.News) PaginationCursor {
		return PaginationCursor{ID: n.ID, CreatedAt: n.CreatedAt}
	})
}

// UpdateNews writes the explicitly set fields of c.
func (r *Repository) UpdateNews(ctx context.Context, c *model.NewsChanges) (*model.News, error) {
	if err := r.normalize(tableNews, c, false); err != nil {
		return nil, err
	}

	var set updateSet
	setField(&set, "title", c.Title, nil)
	setField(&set, "excerpt", c.Excerpt, nil)
	setField(&set, "content", c.Content, nil)
	setField(&set, "published_at", c.PublishedAt, nil)
	setField(&set, "category", c.Category, nil)
	setField(&set, "read_time", c.ReadTime, nil)
	setField(&set, "featured", c.Featured, nil)
	setField(&set, "updated_at", c.UpdatedAt, nil)

	start := time.Now()
	query, args := set.build(tableNews, c.ID, newsColumns)
	news, err := scanNews(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNewsNotFound
		}
		return nil, fmt.Errorf("failed to update news: %w", err)
	}
	r.recordWrite(tableNews, metrics.OpUpdate, start)
	return news, nil
}

// DeleteNews removes an article.
func (r *Repository) DeleteNews(ctx context.Context, id int64) error {
	start := time.Now()
	result, err := r.pool.Exec(ctx, `DELETE FROM news WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete news: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNewsNotFound
	}
	r.recordWrite(tableNews, metrics.OpDelete, start)
	return nil
}

func scanNews(row rowScanner) (*model.News, error) {
	var n model.News
	err := row.Scan(
		&n.ID,
		&n.Title,
		&n.Excerpt,
		&n.Content,
		&n.PublishedAt,
		&n.Category,
		&n.ReadTime,
		&n.Featured,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
