// Package model defines domain entities for the application.
package model

import (
	"time"

	"github.com/dsgallups/rust-atlanta/internal/presave"
)

// User is a registered member profile.
type User struct {
	ID                     string     `json:"id"`
	Email                  string     `json:"email"`
	Name                   string     `json:"name"`
	PasswordHash           string     `json:"-"`
	EmailVerificationToken string     `json:"-"`
	EmailVerifiedAt        *time.Time `json:"email_verified_at,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// IsVerified reports whether the user confirmed their email address.
func (u *User) IsVerified() bool {
	return u.EmailVerifiedAt != nil
}

// UserChanges is a staged write to the users table.
type UserChanges struct {
	ID                     string
	Email                  presave.Field[string]
	Name                   presave.Field[string]
	PasswordHash           presave.Field[string]
	EmailVerificationToken presave.Field[string]
	EmailVerifiedAt        presave.Field[*time.Time]
	presave.Stamps
}

// PreSaveStamps implements presave.Entity.
func (c *UserChanges) PreSaveStamps() *presave.Stamps { return &c.Stamps }

// NewUser stages a user insert.
func NewUser(id, email, name, passwordHash, verificationToken string) *UserChanges {
	return &UserChanges{
		ID:                     id,
		Email:                  presave.Set(NormalizeEmail(email)),
		Name:                   presave.Set(name),
		PasswordHash:           presave.Set(passwordHash),
		EmailVerificationToken: presave.Set(verificationToken),
		EmailVerifiedAt:        presave.Set[*time.Time](nil),
	}
}

// Changes stages an update of u with every field unchanged.
func (u *User) Changes() *UserChanges {
	return &UserChanges{
		ID:                     u.ID,
		Email:                  presave.Unchanged(u.Email),
		Name:                   presave.Unchanged(u.Name),
		PasswordHash:           presave.Unchanged(u.PasswordHash),
		EmailVerificationToken: presave.Unchanged(u.EmailVerificationToken),
		EmailVerifiedAt:        presave.Unchanged(u.EmailVerifiedAt),
		Stamps: presave.Stamps{
			CreatedAt: presave.Unchanged(u.CreatedAt),
			UpdatedAt: presave.Unchanged(u.UpdatedAt),
		},
	}
}

// User returns the entity as it will look after the write.
func (c *UserChanges) User() *User {
	return &User{
		ID:                     c.ID,
		Email:                  c.Email.Value(),
		Name:                   c.Name.Value(),
		PasswordHash:           c.PasswordHash.Value(),
		EmailVerificationToken: c.EmailVerificationToken.Value(),
		EmailVerifiedAt:        c.EmailVerifiedAt.Value(),
		CreatedAt:              c.CreatedAt.Value(),
		UpdatedAt:              c.UpdatedAt.Value(),
	}
}
