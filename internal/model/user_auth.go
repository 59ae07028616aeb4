package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/dsgallups/rust-atlanta/internal/presave"
)

// UserAuth is the credential record of a user. Its API key is issued once,
// when the record is inserted, and never changes afterwards.
type UserAuth struct {
	ID              uuid.UUID  `json:"id"`
	UserID          string     `json:"user_id"`
	Email           string     `json:"email"`
	APIKey          string     `json:"-"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// IsVerified reports whether the credential's email is confirmed.
func (a *UserAuth) IsVerified() bool {
	return a.EmailVerifiedAt != nil
}

// UserAuthChanges is a staged write to the user_auths table.
type UserAuthChanges struct {
	ID              uuid.UUID
	UserID          presave.Field[string]
	Email           presave.Field[string]
	APIKey          presave.Field[string]
	EmailVerifiedAt presave.Field[*time.Time]
	presave.Stamps
}

// PreSaveStamps implements presave.Entity.
func (c *UserAuthChanges) PreSaveStamps() *presave.Stamps { return &c.Stamps }

// PreSaveToken implements presave.Credential.
func (c *UserAuthChanges) PreSaveToken() *presave.Field[string] { return &c.APIKey }

// NewUserAuth stages a credential insert. The API key is assigned on save.
func NewUserAuth(id uuid.UUID, userID, email string) *UserAuthChanges {
	return &UserAuthChanges{
		ID:              id,
		UserID:          presave.Set(userID),
		Email:           presave.Set(NormalizeEmail(email)),
		EmailVerifiedAt: presave.Set[*time.Time](nil),
	}
}

// Changes stages an update of a with every field unchanged.
func (a *UserAuth) Changes() *UserAuthChanges {
	return &UserAuthChanges{
		ID:              a.ID,
		UserID:          presave.Unchanged(a.UserID),
		Email:           presave.Unchanged(a.Email),
		APIKey:          presave.Unchanged(a.APIKey),
		EmailVerifiedAt: presave.Unchanged(a.EmailVerifiedAt),
		Stamps: presave.Stamps{
			CreatedAt: presave.Unchanged(a.CreatedAt),
			UpdatedAt: presave.Unchanged(a.UpdatedAt),
		},
	}
}

// UserAuth returns the entity as it will look after the write.
func (c *UserAuthChanges) UserAuth() *UserAuth {
	return &UserAuth{
		ID:              c.ID,
		UserID:          c.UserID.Value(),
		Email:           c.Email.Value(),
		APIKey:          c.APIKey.Value(),
		EmailVerifiedAt: c.EmailVerifiedAt.Value(),
		CreatedAt:       c.CreatedAt.Value(),
		UpdatedAt:       c.UpdatedAt.Value(),
	}
}
