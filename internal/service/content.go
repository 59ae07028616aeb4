package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/dsgallups/rust-atlanta/internal/model"
	"github.com/dsgallups/rust-atlanta/internal/repository"
)

// Content service errors.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxURLLength    = 2048
)

// ContentStore is the persistence the content service needs.
type ContentStore interface {
	CreateProject(ctx context.Context, c *model.ProjectChanges) (*model.Project, error)
	GetProject(ctx context.Context, id int64) (*model.Project, error)
	ListProjects(ctx context.Context, filter repository.ProjectFilter, cursor string, limit int) ([]*model.Project, string, error)
	UpdateProject(ctx context.Context, c *model.ProjectChanges) (*model.Project, error)
	DeleteProject(ctx context.Context, id int64) error

	CreateEvent(ctx context.Context, c *model.EventChanges) (*model.Event, error)
	GetEvent(ctx context.Context, id int64) (*model.Event, error)
	ListEvents(ctx context.Context, filter repository.EventFilter, cursor string, limit int) ([]*model.Event, string, error)
	UpdateEvent(ctx context.Context, c *model.EventChanges) (*model.Event, error)
	DeleteEvent(ctx context.Context, id int64) error

	CreateNews(ctx context.Context, c *model.NewsChanges) (*model.News, error)
	GetNews(ctx context.Context, id int64) (*model.News, error)
	ListNews(ctx context.Context, filter repository.NewsFilter, cursor string, limit int) ([]*model.News, string, error)
	UpdateNews(ctx context.Context, c *model.NewsChanges) (*model.News, error)
	DeleteNews(ctx context.Context, id int64) error
}

// Page is one page of a keyset-paginated listing.
type Page[T any] struct {
	Items      []T
	NextCursor string
}

// ListInput defines paging and filters shared by the list operations.
type ListInput struct {
	Cursor        string
	Limit         int
	Tag           string
	EventType     string
	UpcomingOnly  bool
	Category      string
	FeaturedOnly  bool
	PublishedOnly bool
}

func (in ListInput) limit() int {
	if in.Limit <= 0 {
		return defaultPageSize
	}
	if in.Limit > maxPageSize {
		return maxPageSize
	}
	return in.Limit
}

// ContentService handles projects, events and news.
type ContentService struct {
	store  ContentStore
	logger *slog.Logger
	now    func() time.Time
}

// NewContentService creates a new ContentService.
func NewContentService(store ContentStore, logger *slog.Logger) *ContentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentService{store: store, logger: logger, now: time.Now}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// notFound folds the repository's per-table sentinels into ErrNotFound.
func notFound(err error, sentinels ...error) error {
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return ErrNotFound
		}
	}
	return err
}

func requireText(field string, v *string) error {
	if v != nil && strings.TrimSpace(*v) == "" {
		return invalid("%s must not be empty", field)
	}
	return nil
}

func requirePresent(field string, v *string) error {
	if v == nil {
		return invalid("%s is required", field)
	}
	return requireText(field, v)
}

// ----------------------------------------------------------------------------
// Projects
// ----------------------------------------------------------------------------

func validateProject(in *model.ProjectInput, create bool) error {
	if create {
		if err := requirePresent("name", in.Name); err != nil {
			return err
		}
	} else if err := requireText("name", in.Name); err != nil {
		return err
	}
	if in.RepositoryURL != nil && *in.RepositoryURL != "" {
		if len(*in.RepositoryURL) > maxURLLength {
			return invalid("repository_url is too long")
		}
		u, err := url.Parse(*in.RepositoryURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return invalid("repository_url must be an http(s) URL")
		}
	}
	if in.Tags != nil {
		for _, tag := range *in.Tags {
			if strings.TrimSpace(tag) == "" {
				return invalid("tags must not contain empty values")
			}
		}
	}
	return nil
}

// CreateProject validates and stores a new project.
func (s *ContentService) CreateProject(ctx context.Context, in *model.ProjectInput) (*model.Project, error) {
	if err := validateProject(in, true); err != nil {
		return nil, err
	}
	project, err := s.store.CreateProject(ctx, model.NewProject(in))
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	s.logger.Info("project_created", "project_id", project.ID)
	return project, nil
}

// GetProject returns a project by id.
func (s *ContentService) GetProject(ctx context.Context, id int64) (*model.Project, error) {
	project, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, notFound(err, repository.ErrProjectNotFound)
	}
	return project, nil
}

// ListProjects returns a page of projects.
func (s *ContentService) ListProjects(ctx context.Context, in ListInput) (*Page[*model.Project], error) {
	items, next, err := s.store.ListProjects(ctx, repository.ProjectFilter{Tag: in.Tag}, in.Cursor, in.limit())
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCursor) {
			return nil, invalid("cursor is malformed")
		}
		return nil, err
	}
	return &Page[*model.Project]{Items: items, NextCursor: next}, nil
}

// UpdateProject applies the provided fields to a stored project.
func (s *ContentService) UpdateProject(ctx context.Context, id int64, in *model.ProjectInput) (*model.Project, error) {
	if err := validateProject(in, false); err != nil {
		return nil, err
	}
	current, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := current.Changes()
	in.Stage(changes)
	project, err := s.store.UpdateProject(ctx, changes)
	if err != nil {
		return nil, notFound(err, repository.ErrProjectNotFound)
	}
	s.logger.Info("project_updated", "project_id", project.ID)
	return project, nil
}

// DeleteProject removes a project.
func (s *ContentService) DeleteProject(ctx context.Context, id int64) error {
	if err := s.store.DeleteProject(ctx, id); err != nil {
		return notFound(err, repository.ErrProjectNotFound)
	}
	s.logger.Info("project_deleted", "project_id", id)
	return nil
}

// ----------------------------------------------------------------------------
// Events
// ----------------------------------------------------------------------------

func validateEvent(in *model.EventInput, create bool) error {
	check := requireText
	if create {
		check = requirePresent
		if in.Date == nil {
			return invalid("date is required")
		}
	}
	for _, f := range []struct {
		name string
		v    *string
	}{
		{"title", in.Title},
		{"description", in.Description},
		{"location", in.Location},
		{"event_type", in.EventType},
	} {
		if err := check(f.name, f.v); err != nil {
			return err
		}
	}
	if in.Date != nil && in.Date.IsZero() {
		return invalid("date must be set")
	}
	return nil
}

// CreateEvent validates and stores a new event.
func (s *ContentService) CreateEvent(ctx context.Context, in *model.EventInput) (*model.Event, error) {
	if err := validateEvent(in, true); err != nil {
		return nil, err
	}
	event, err := s.store.CreateEvent(ctx, model.NewEvent(in))
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	s.logger.Info("event_created", "event_id", event.ID)
	return event, nil
}

// GetEvent returns an event by id.
func (s *ContentService) GetEvent(ctx context.Context, id int64) (*model.Event, error) {
	event, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return nil, notFound(err, repository.ErrEventNotFound)
	}
	return event, nil
}

// ListEvents returns a page of events.
func (s *ContentService) ListEvents(ctx context.Context, in ListInput) (*Page[*model.Event], error) {
	filter := repository.EventFilter{EventType: in.EventType}
	if in.UpcomingOnly {
		now := s.now().UTC()
		filter.After = &now
	}
	items, next, err := s.store.ListEvents(ctx, filter, in.Cursor, in.limit())
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCursor) {
			return nil, invalid("cursor is malformed")
		}
		return nil, err
	}
	return &Page[*model.Event]{Items: items, NextCursor: next}, nil
}

// UpdateEvent applies the provided fields to a stored event.
func (s *ContentService) UpdateEvent(ctx context.Context, id int64, in *model.EventInput) (*model.Event, error) {
	if err := validateEvent(in, false); err != nil {
		return nil, err
	}
	current, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := current.Changes()
	in.Stage(changes)
	event, err := s.store.UpdateEvent(ctx, changes)
	if err != nil {
		return nil, notFound(err, repository.ErrEventNotFound)
	}
	s.logger.Info("event_updated", "event_id", event.ID)
	return event, nil
}

// DeleteEvent removes an event.
func (s *ContentService) DeleteEvent(ctx context.Context, id int64) error {
	if err := s.store.DeleteEvent(ctx, id); err != nil {
		return notFound(err, repository.ErrEventNotFound)
	}
	s.logger.Info("event_deleted", "event_id", id)
	return nil
}

// ----------------------------------------------------------------------------
// News
// ----------------------------------------------------------------------------

func validateNews(in *model.NewsInput, create bool) error {
	check := requireText
	if create {
		check = requirePresent
	}
	for _, f := range []struct {
		name string
		v    *string
	}{
		{"title", in.Title},
		{"excerpt", in.Excerpt},
		{"content", in.Content},
		{"category", in.Category},
	} {
		if err := check(f.name, f.v); err != nil {
			return err
		}
	}
	if in.ReadTime != nil && *in.ReadTime < 0 {
		return invalid("read_time must not be negative")
	}
	return nil
}

// CreateNews validates and stores a new article.
func (s *ContentService) CreateNews(ctx context.Context, in *model.NewsInput) (*model.News, error) {
	if err := validateNews(in, true); err != nil {
		return nil, err
	}
	news, err := s.store.CreateNews(ctx, model.NewNews(in))
	if err != nil {
		return nil, fmt.Errorf("failed to create news: %w", err)
	}
	s.logger.Info("news_created", "news_id", news.ID)
	return news, nil
}

// GetNews returns an article by id.
func (s *ContentService) GetNews(ctx context.Context, id int64) (*model.News, error) {
	news, err := s.store.GetNews(ctx, id)
	if err != nil {
		return nil, notFound(err, repository.ErrNewsNotFound)
	}
	return news, nil
}

// ListNews returns a page of articles.
func (s *ContentService) ListNews(ctx context.Context, in ListInput) (*Page[*model.News], error) {
	filter := repository.NewsFilter{Category: in.Category, FeaturedOnly: in.FeaturedOnly}
	if in.PublishedOnly {
		now := s.now().UTC()
		filter.PublishedAsOf = &now
	}
	items, next, err := s.store.ListNews(ctx, filter, in.Cursor, in.limit())
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCursor) {
			return nil, invalid("cursor is malformed")
		}
		return nil, err
	}
	return &Page[*model.News]{Items: items, NextCursor: next}, nil
}

// UpdateNews applies the provided fields to a stored article.
func (s *ContentService) UpdateNews(ctx context.Context, id int64, in *model.NewsInput) (*model.News, error) {
	if err := validateNews(in, false); err != nil {
		return nil, err
	}
	current, err := s.GetNews(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := current.Changes()
	in.Stage(changes)
	news, err := s.store.UpdateNews(ctx, changes)
	if err != nil {
		return nil, notFound(err, repository.ErrNewsNotFound)
	}
	s.logger.Info("news_updated", "news_id", news.ID)
	return news, nil
}

// DeleteNews removes an article.
func (s *ContentService) DeleteNews(ctx context.Context, id int64) error {
	if err := s.store.DeleteNews(ctx, id); err != nil {
		return notFound(err, repository.ErrNewsNotFound)
	}
	s.logger.Info("news_deleted", "news_id", id)
	return nil
}
