package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dsgallups/rust-atlanta/internal/auth"
	"github.com/dsgallups/rust-atlanta/internal/model"
)

// APIKeyHeader carries a user's API key.
const APIKeyHeader = "X-API-Key"

// Authenticator resolves credentials into a principal.
type Authenticator interface {
	AuthenticateSession(ctx context.Context, token string) (*model.Principal, error)
	AuthenticateAPIKey(ctx context.Context, apiKey string) (*model.Principal, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger        *slog.Logger
	Authenticator Authenticator
	// IsUnauthenticated reports whether err is a credential rejection rather
	// than an infrastructure failure.
	IsUnauthenticated func(err error) bool
}

// Authenticate resolves the caller from "Authorization: Bearer <session>" or
// "X-API-Key: <key>" and stores the principal in the request context.
// Requests without credentials pass through anonymously; requests with
// invalid credentials are rejected with 401.
func Authenticate(cfg AuthConfig) func(http.Handler) http.Handler {
	isUnauthenticated := cfg.IsUnauthenticated
	if isUnauthenticated == nil {
		isUnauthenticated = func(error) bool { return true }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var (
				p      *model.Principal
				err    error
				method string
			)
			switch {
			case r.Header.Get("Authorization") != "":
				method = model.AuthMethodSession
				token, ok := bearerToken(r)
				if !ok {
					err = errMalformedAuthorization
					break
				}
				p, err = cfg.Authenticator.AuthenticateSession(ctx, token)
			case r.Header.Get(APIKeyHeader) != "":
				method = model.AuthMethodAPIKey
				p, err = cfg.Authenticator.AuthenticateAPIKey(ctx, r.Header.Get(APIKeyHeader))
			default:
				next.ServeHTTP(w, r)
				return
			}

			if err != nil {
				if errors.Is(err, errMalformedAuthorization) || isUnauthenticated(err) {
					cfg.Logger.Warn("authentication_failed",
						slog.String("method", method),
						slog.String("endpoint", r.Method+" "+r.URL.Path),
						slog.String("request_id", GetRequestID(ctx)),
					)
					writeAuthError(w)
					return
				}
				cfg.Logger.Error("authentication_error",
					slog.String("method", method),
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(ctx)),
				)
				writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
				return
			}

			if info := getRequestInfo(ctx); info != nil {
				info.userID = p.UserID
				info.authMethod = p.Method
			}
			next.ServeHTTP(w, r.WithContext(auth.ContextWithPrincipal(ctx, p)))
		})
	}
}

// RequireAuth rejects requests that Authenticate left anonymous.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.PrincipalFromContext(r.Context()) == nil {
			writeAuthError(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

var errMalformedAuthorization = errors.New("malformed authorization header")

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// writeAuthError uses the same message for every failure so callers cannot
// tell a bad token from an unknown key.
func writeAuthError(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing credentials")
}
