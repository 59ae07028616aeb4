package model

// Authentication methods recorded on a Principal.
const (
	AuthMethodSession = "session"
	AuthMethodAPIKey  = "api_key"
)

// Principal is the authenticated caller injected by the auth middleware.
type Principal struct {
	UserID string
	PID    string
	Email  string
	Method string
}
