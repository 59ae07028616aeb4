// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"github.com/dsgallups/rust-atlanta/internal/model"
)

// RegisterRequest represents the request body for registering a user.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest represents the request body for logging in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token      string `json:"token"`
	PID        string `json:"pid"`
	Name       string `json:"name"`
	IsVerified bool   `json:"is_verified"`
}

// NewLoginResponse builds the login view. The pid is the credential id and
// verification state comes from the credential, not the user row.
func NewLoginResponse(user *model.User, userAuth *model.UserAuth, token string) LoginResponse {
	return LoginResponse{
		Token:      token,
		PID:        userAuth.ID.String(),
		Name:       user.Name,
		IsVerified: userAuth.EmailVerifiedAt != nil,
	}
}

// CurrentResponse describes the authenticated user.
type CurrentResponse struct {
	PID   string `json:"pid"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewCurrentResponse builds the current-user view.
func NewCurrentResponse(user *model.User, pid string) CurrentResponse {
	return CurrentResponse{
		PID:   pid,
		Name:  user.Name,
		Email: user.Email,
	}
}

// RegisterResponse is the current-user view plus the API key, which is
// only ever shown here.
type RegisterResponse struct {
	CurrentResponse
	APIKey string `json:"api_key"`
}

// NewRegisterResponse builds the registration view.
func NewRegisterResponse(user *model.User, userAuth *model.UserAuth) RegisterResponse {
	return RegisterResponse{
		CurrentResponse: NewCurrentResponse(user, userAuth.ID.String()),
		APIKey:          userAuth.APIKey,
	}
}

// VerifyResponse confirms an email verification.
type VerifyResponse struct {
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
}

// NewVerifyResponse builds the verification view.
func NewVerifyResponse(user *model.User) VerifyResponse {
	return VerifyResponse{Email: user.Email, Verified: user.IsVerified()}
}
