package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dsgallups/rust-atlanta/internal/auth"
	"github.com/dsgallups/rust-atlanta/internal/handler/dto"
	"github.com/dsgallups/rust-atlanta/internal/model"
	"github.com/dsgallups/rust-atlanta/internal/service"
)

// AuthService is the account logic behind the auth endpoints.
type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (*model.User, *model.UserAuth, error)
	Login(ctx context.Context, in service.LoginInput) (*service.LoginResult, error)
	Current(ctx context.Context, p *model.Principal) (*model.User, error)
	VerifyEmail(ctx context.Context, token string) (*model.User, error)
}

// AuthHandler handles account endpoints.
type AuthHandler struct {
	svc    AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, cred, err := h.svc.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.NewRegisterResponse(user, cred))
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.svc.Login(r.Context(), service.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewLoginResponse(res.User, res.UserAuth, res.Token))
}

// Verify handles GET /api/auth/verify/{token}.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.VerifyEmail(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewVerifyResponse(user))
}

// Current handles GET /api/auth/current.
func (h *AuthHandler) Current(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	user, err := h.svc.Current(r.Context(), p)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewCurrentResponse(user, p.PID))
}
