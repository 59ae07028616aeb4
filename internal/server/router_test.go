package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsgallups/rust-atlanta/internal/cache"
	"github.com/dsgallups/rust-atlanta/internal/handler"
	"github.com/dsgallups/rust-atlanta/internal/metrics"
	"github.com/dsgallups/rust-atlanta/internal/middleware"
	"github.com/dsgallups/rust-atlanta/internal/model"
	"github.com/dsgallups/rust-atlanta/internal/service"
)

var errBadCredentials = errors.New("bad credentials")

type stubAuthenticator struct{}

func (stubAuthenticator) AuthenticateSession(context.Context, string) (*model.Principal, error) {
	return nil, errBadCredentials
}

func (stubAuthenticator) AuthenticateAPIKey(_ context.Context, key string) (*model.Principal, error) {
	if key != "lo-valid" {
		return nil, errBadCredentials
	}
	return &model.Principal{UserID: "u1", PID: "p1", Method: model.AuthMethodAPIKey}, nil
}

// stubAuthService and stubContent only implement what the routes below reach.
type stubAuthService struct{ handler.AuthService }

func (stubAuthService) Login(context.Context, service.LoginInput) (*service.LoginResult, error) {
	return nil, service.ErrInvalidCredentials
}

func (stubAuthService) Current(_ context.Context, p *model.Principal) (*model.User, error) {
	return &model.User{ID: p.UserID, Name: "Ada", Email: "ada@example.com"}, nil
}

type stubContent struct{ handler.ContentService }

func (stubContent) ListProjects(context.Context, service.ListInput) (*service.Page[*model.Project], error) {
	return &service.Page[*model.Project]{}, nil
}

func (stubContent) CreateProject(_ context.Context, in *model.ProjectInput) (*model.Project, error) {
	return &model.Project{ID: 1, Name: *in.Name}, nil
}

type denyAfter struct{ n int }

func (d *denyAfter) CheckLoginRateLimit(context.Context, string, float64, int) (*cache.RateLimitResult, error) {
	d.n--
	if d.n < 0 {
		return &cache.RateLimitResult{Allowed: false, RetryAfter: time.Second}, nil
	}
	return &cache.RateLimitResult{Allowed: true}, nil
}

func newTestRouter() http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(RouterConfig{
		Logger:  logger,
		Handler: handler.New(),
		Health:  handler.NewHealthHandler(nil, nil),
		Metrics: handler.NewMetricsHandler(metrics.NewInMemory()),
		Auth:    handler.NewAuthHandler(stubAuthService{}, logger),
		Content: handler.NewContentHandler(stubContent{}, logger),
		Authentication: middleware.AuthConfig{
			Logger:        logger,
			Authenticator: stubAuthenticator{},
		},
		LoginRateLimit: middleware.RateLimitConfig{
			Logger:  logger,
			Limiter: &denyAfter{n: 1},
			Enabled: true,
			RPS:     1,
			Burst:   1,
		},
		IsDevelopment:      true,
		CORSAllowedOrigins: []string{"https://rustatlanta.org"},
		MaxRequestBodySize: 1024,
	})
}

func TestRouter_PublicRoutes(t *testing.T) {
	router := newTestRouter()

	for _, path := range []string{"/", "/healthz", "/readyz", "/metrics", "/api/projects"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader), path)
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"), path)
	}
}

func TestRouter_MutationsRequireAuth(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader(`{"name":"ferris"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader(`{"name":"ferris"}`))
	req.Header.Set(middleware.APIKeyHeader, "lo-valid")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set(middleware.APIKeyHeader, "lo-wrong")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "invalid credentials are rejected even on public reads")
}

func TestRouter_Current(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/current", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/current", nil)
	req.Header.Set(middleware.APIKeyHeader, "lo-valid")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"pid":"p1","name":"Ada","email":"ada@example.com"}`, rec.Body.String())
}

func TestRouter_LoginRateLimited(t *testing.T) {
	router := newTestRouter()

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"a@example.com","password":"whatever1"}`)))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}

func TestRouter_NotFoundAndMethodNotAllowed(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"NOT_FOUND"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/healthz", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/projects", nil)
	req.Header.Set("Origin", "https://rustatlanta.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://rustatlanta.org", rec.Header().Get("Access-Control-Allow-Origin"))
}
