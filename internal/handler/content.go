package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dsgallups/rust-atlanta/internal/handler/dto"
	"github.com/dsgallups/rust-atlanta/internal/model"
	"github.com/dsgallups/rust-atlanta/internal/service"
)

// ContentService is the logic behind the project, event and news endpoints.
type ContentService interface {
	CreateProject(ctx context.Context, in *model.ProjectInput) (*model.Project, error)
	GetProject(ctx context.Context, id int64) (*model.Project, error)
	ListProjects(ctx context.Context, in service.ListInput) (*service.Page[*model.Project], error)
	UpdateProject(ctx context.Context, id int64, in *model.ProjectInput) (*model.Project, error)
	DeleteProject(ctx context.Context, id int64) error

	CreateEvent(ctx context.Context, in *model.EventInput) (*model.Event, error)
	GetEvent(ctx context.Context, id int64) (*model.Event, error)
	ListEvents(ctx context.Context, in service.ListInput) (*service.Page[*model.Event], error)
	UpdateEvent(ctx context.Context, id int64, in *model.EventInput) (*model.Event, error)
	DeleteEvent(ctx context.Context, id int64) error

	CreateNews(ctx context.Context, in *model.NewsInput) (*model.News, error)
	GetNews(ctx context.Context, id int64) (*model.News, error)
	ListNews(ctx context.Context, in service.ListInput) (*service.Page[*model.News], error)
	UpdateNews(ctx context.Context, id int64, in *model.NewsInput) (*model.News, error)
	DeleteNews(ctx context.Context, id int64) error
}

// ContentHandler handles the project, event and news endpoints.
type ContentHandler struct {
	svc    ContentService
	logger *slog.Logger
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(svc ContentService, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{svc: svc, logger: logger}
}

// CreateProject handles POST /api/projects.
func (h *ContentHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	create(h, w, r, h.svc.CreateProject)
}

// GetProject handles GET /api/projects/{id}.
func (h *ContentHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	get(h, w, r, h.svc.GetProject)
}

// ListProjects handles GET /api/projects.
func (h *ContentHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	list(h, w, r, h.svc.ListProjects)
}

// UpdateProject handles PATCH /api/projects/{id}.
func (h *ContentHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	update(h, w, r, h.svc.UpdateProject)
}

// DeleteProject handles DELETE /api/projects/{id}.
func (h *ContentHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	remove(h, w, r, h.svc.DeleteProject)
}

// CreateEvent handles POST /api/events.
func (h *ContentHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	create(h, w, r, h.svc.CreateEvent)
}

// GetEvent handles GET /api/events/{id}.
func (h *ContentHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	get(h, w, r, h.svc.GetEvent)
}

// ListEvents handles GET /api/events.
func (h *ContentHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	list(h, w, r, h.svc.ListEvents)
}

// UpdateEvent handles PATCH /api/events/{id}.
func (h *ContentHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	update(h, w, r, h.svc.UpdateEvent)
}

// DeleteEvent handles DELETE /api/events/{id}.
func (h *ContentHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	remove(h, w, r, h.svc.DeleteEvent)
}

// CreateNews handles POST /api/news.
func (h *ContentHandler) CreateNews(w http.ResponseWriter, r *http.Request) {
	create(h, w, r, h.svc.CreateNews)
}

// GetNews handles GET /api/news/{id}.
func (h *ContentHandler) GetNews(w http.ResponseWriter, r *http.Request) {
	get(h, w, r, h.svc.GetNews)
}

// ListNews handles GET /api/news.
func (h *ContentHandler) ListNews(w http.ResponseWriter, r *http.Request) {
	list(h, w, r, h.svc.ListNews)
}

// UpdateNews handles PATCH /api/news/{id}.
func (h *ContentHandler) UpdateNews(w http.ResponseWriter, r *http.Request) {
	update(h, w, r, h.svc.UpdateNews)
}

// DeleteNews handles DELETE /api/news/{id}.
func (h *ContentHandler) DeleteNews(w http.ResponseWriter, r *http.Request) {
	remove(h, w, r, h.svc.DeleteNews)
}

func create[In, Out any](h *ContentHandler, w http.ResponseWriter, r *http.Request, fn func(context.Context, *In) (Out, error)) {
	in := new(In)
	if !decodeJSON(w, r, in) {
		return
	}
	out, err := fn(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func get[Out any](h *ContentHandler, w http.ResponseWriter, r *http.Request, fn func(context.Context, int64) (Out, error)) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	out, err := fn(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func update[In, Out any](h *ContentHandler, w http.ResponseWriter, r *http.Request, fn func(context.Context, int64, *In) (Out, error)) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	in := new(In)
	if !decodeJSON(w, r, in) {
		return
	}
	out, err := fn(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func remove(h *ContentHandler, w http.ResponseWriter, r *http.Request, fn func(context.Context, int64) error) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := fn(r.Context(), id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func list[T any](h *ContentHandler, w http.ResponseWriter, r *http.Request, fn func(context.Context, service.ListInput) (*service.Page[T], error)) {
	page, err := fn(r.Context(), parseListInput(r))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewListResponse(page.Items, page.NextCursor))
}

// parseListInput reads paging and filter query parameters. Malformed
// numbers and booleans fall back to their defaults.
func parseListInput(r *http.Request) service.ListInput {
	q := r.URL.Query()
	in := service.ListInput{
		Cursor:    q.Get("cursor"),
		Tag:       q.Get("tag"),
		EventType: q.Get("event_type"),
		Category:  q.Get("category"),
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil {
		in.Limit = n
	}
	in.UpcomingOnly, _ = strconv.ParseBool(q.Get("upcoming"))
	in.FeaturedOnly, _ = strconv.ParseBool(q.Get("featured"))
	in.PublishedOnly, _ = strconv.ParseBool(q.Get("published"))
	return in
}
