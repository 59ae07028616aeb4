// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/dsgallups/rust-atlanta/internal/auth"
	"github.com/dsgallups/rust-atlanta/internal/metrics"
	"github.com/dsgallups/rust-atlanta/internal/model"
	"github.com/dsgallups/rust-atlanta/internal/repository"
)

// Auth service errors.
var (
	ErrInvalidCredentials       = errors.New("invalid email or password")
	ErrEmailTaken               = errors.New("email already registered")
	ErrNameRequired             = errors.New("name is required")
	ErrNameTooLong              = errors.New("name is too long")
	ErrInvalidVerificationToken = errors.New("invalid verification token")
	ErrUnauthenticated          = errors.New("unauthenticated")
)

// MaxNameLength is the longest display name accepted at registration, in runes.
const MaxNameLength = 100

// UserStore is the persistence the auth service needs.
type UserStore interface {
	RegisterUser(ctx context.Context, user *model.UserChanges, cred *model.UserAuthChanges) (*model.User, *model.UserAuth, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserAuthByUserID(ctx context.Context, userID string) (*model.UserAuth, error)
	GetUserAuthByAPIKey(ctx context.Context, apiKey string) (*model.UserAuth, error)
	VerifyEmail(ctx context.Context, token string, verifiedAt time.Time) (*model.User, *model.UserAuth, error)
}

// PrincipalCache caches principals resolved from API keys.
type PrincipalCache interface {
	GetPrincipal(ctx context.Context, apiKey string) (*model.Principal, bool, error)
	SetPrincipal(ctx context.Context, apiKey string, p *model.Principal) error
}

// AuthService handles registration, login and caller authentication.
type AuthService struct {
	users    UserStore
	hasher   *auth.PasswordHasher
	sessions *auth.SessionIssuer
	tokens   *auth.TokenGenerator
	cache    PrincipalCache
	metrics  metrics.Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// AuthServiceConfig groups AuthService dependencies. Cache, Metrics and Logger are optional.
type AuthServiceConfig struct {
	Users    UserStore
	Hasher   *auth.PasswordHasher
	Sessions *auth.SessionIssuer
	Tokens   *auth.TokenGenerator
	Cache    PrincipalCache
	Metrics  metrics.Recorder
	Logger   *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &AuthService{
		users:    cfg.Users,
		hasher:   cfg.Hasher,
		sessions: cfg.Sessions,
		tokens:   cfg.Tokens,
		cache:    cfg.Cache,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		now:      time.Now,
	}
}

// RegisterInput defines input for registering a user.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// Register creates a user and its credential record. The credential's API
// key is issued by the pre-save hook during the insert.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, *model.UserAuth, error) {
	email := model.NormalizeEmail(in.Email)
	if err := model.ValidateEmail(email); err != nil {
		return nil, nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, nil, ErrNameRequired
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return nil, nil, ErrNameTooLong
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, nil, err
	}

	userID := ulid.Make().String()
	user := model.NewUser(userID, email, name, hash, uuid.NewString())
	cred := model.NewUserAuth(uuid.New(), userID, email)

	createdUser, createdAuth, err := s.users.RegisterUser(ctx, user, cred)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, nil, ErrEmailTaken
		}
		return nil, nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.Info("user_registered", "user_id", createdUser.ID, "pid", createdAuth.ID.String())
	return createdUser, createdAuth, nil
}

// LoginInput defines input for logging in.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries everything the login view needs.
type LoginResult struct {
	User     *model.User
	UserAuth *model.UserAuth
	Token    string
}

// Login checks the password and issues a session token.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	user, err := s.users.GetUserByEmail(ctx, model.NormalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLogin(metrics.LoginFailed)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	ok, err := s.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		s.metrics.IncLogin(metrics.LoginFailed)
		return nil, ErrInvalidCredentials
	}

	cred, err := s.users.GetUserAuthByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	token, err := s.sessions.Issue(cred.ID.String(), user.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.IncLogin(metrics.LoginSuccess)
	return &LoginResult{User: user, UserAuth: cred, Token: token}, nil
}

// Current loads the user behind an authenticated principal.
func (s *AuthService) Current(ctx context.Context, p *model.Principal) (*model.User, error) {
	if p == nil || p.UserID == "" {
		return nil, ErrUnauthenticated
	}
	user, err := s.users.GetUserByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load current user: %w", err)
	}
	return user, nil
}

// VerifyEmail confirms the address behind a verification token.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*model.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrInvalidVerificationToken
	}

	user, _, err := s.users.VerifyEmail(ctx, token, s.now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) || errors.Is(err, repository.ErrUserAuthNotFound) {
			return nil, ErrInvalidVerificationToken
		}
		return nil, fmt.Errorf("failed to verify email: %w", err)
	}

	s.logger.Info("email_verified", "user_id", user.ID)
	return user, nil
}

// AuthenticateSession resolves a bearer session token.
func (s *AuthService) AuthenticateSession(_ context.Context, token string) (*model.Principal, error) {
	claims, err := s.sessions.Parse(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	return &model.Principal{
		UserID: claims.UserID,
		PID:    claims.PID,
		Method: model.AuthMethodSession,
	}, nil
}

// AuthenticateAPIKey resolves an API key, consulting the principal cache first.
func (s *AuthService) AuthenticateAPIKey(ctx context.Context, apiKey string) (*model.Principal, error) {
	if s.tokens != nil && !s.tokens.ValidateTokenFormat(apiKey) {
		return nil, ErrUnauthenticated
	}

	if s.cache != nil {
		p, ok, err := s.cache.GetPrincipal(ctx, apiKey)
		if err != nil {
			s.logger.Warn("principal_cache_read_failed", "error", err)
		}
		if ok {
			s.metrics.IncPrincipalCacheHit()
			return p, nil
		}
		s.metrics.IncPrincipalCacheMiss()
	}

	cred, err := s.users.GetUserAuthByAPIKey(ctx, apiKey)
	if err != nil {
		if errors.Is(err, repository.ErrUserAuthNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to look up api key: %w", err)
	}

	p := &model.Principal{
		UserID: cred.UserID,
		PID:    cred.ID.String(),
		Email:  cred.Email,
		Method: model.AuthMethodAPIKey,
	}
	if s.cache != nil {
		if err := s.cache.SetPrincipal(ctx, apiKey, p); err != nil {
			s.logger.Warn("principal_cache_write_failed", "error", err)
		}
	}
	return p, nil
}
