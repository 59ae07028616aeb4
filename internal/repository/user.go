package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dsgallups/rust-atlanta/internal/metrics"
	"github.com/dsgallups/rust-atlanta/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserAuthNotFound = errors.New("user auth not found")
	ErrEmailExists      = errors.New("email already exists")
	ErrAPIKeyExists     = errors.New("api key already exists")
)

// registerAttempts bounds how often a colliding API key is regenerated.
const registerAttempts = 3

const userColumns = `id, email, name, password_hash, email_verification_token, email_verified_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// RegisterUser inserts a user and its credential record in one transaction.
// The credential's API key is generated by the normalizer; on the rare
// collision with an existing key it is regenerated and the insert retried.
func (r *Repository) RegisterUser(ctx context.Context, user *model.UserChanges, auth *model.UserAuthChanges) (*model.User, *model.UserAuth, error) {
	if err := r.normalize(tableUsers, user, true); err != nil {
		return nil, nil, err
	}

	var lastErr error
	for attempt := 0; attempt < registerAttempts; attempt++ {
		if err := r.normalize(tableUserAuths, auth, true); err != nil {
			return nil, nil, err
		}

		start := time.Now()
		err := r.inTx(ctx, func(tx pgx.Tx) error {
			if err := insertUser(ctx, tx, user); err != nil {
				return err
			}
			return insertUserAuth(ctx, tx, auth)
		})
		if err == nil {
			r.recordWrite(tableUsers, metrics.OpCreate, start)
			r.recordWrite(tableUserAuths, metrics.OpCreate, start)
			return user.User(), auth.UserAuth(), nil
		}
		if !errors.Is(err, ErrAPIKeyExists) {
			return nil, nil, err
		}
		lastErr = err
	}

	return nil, nil, fmt.Errorf("failed to register user after %d attempts: %w", registerAttempts, lastErr)
}

func insertUser(ctx context.Context, q querier, c *model.UserChanges) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := q.Exec(ctx, query,
		c.ID,
		c.Email.Value(),
		c.Name.Value(),
		c.PasswordHash.Value(),
		c.EmailVerificationToken.Value(),
		c.EmailVerifiedAt.Value(),
		c.CreatedAt.Value(),
		c.UpdatedAt.Value(),
	)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return getUser(ctx, r.pool, "id", id)
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return getUser(ctx, r.pool, "email", model.NormalizeEmail(email))
}

func getUser(ctx context.Context, q querier, column string, value any) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1`, userColumns, column)

	user, err := scanUser(q.QueryRow(ctx, query, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}
	return user, nil
}

// UpdateUser writes the explicitly set fields of c. The normalizer refreshes
// updated_at unless c sets it, and created_at is never written.
func (r *Repository) UpdateUser(ctx context.Context, c *model.UserChanges) (*model.User, error) {
	start := time.Now()
	user, err := r.updateUser(ctx, r.pool, c)
	if err != nil {
		return nil, err
	}
	r.recordWrite(tableUsers, metrics.OpUpdate, start)
	return user, nil
}

func (r *Repository) updateUser(ctx context.Context, q querier, c *model.UserChanges) (*model.User, error) {
	if err := r.normalize(tableUsers, c, false); err != nil {
		return nil, err
	}

	var set updateSet
	setField(&set, "email", c.Email, nil)
	setField(&set, "name", c.Name, nil)
	setField(&set, "password_hash", c.PasswordHash, nil)
	setField(&set, "email_verification_token", c.EmailVerificationToken, nil)
	setField(&set, "email_verified_at", c.EmailVerifiedAt, nil)
	setField(&set, "updated_at", c.UpdatedAt, nil)

	query, args := set.build(tableUsers, c.ID, userColumns)
	user, err := scanUser(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		if _, ok := uniqueViolation(err); ok {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// VerifyEmail confirms the email behind a verification token. The user and
// its credential record are both stamped with verifiedAt in one transaction.
func (r *Repository) VerifyEmail(ctx context.Context, token string, verifiedAt time.Time) (*model.User, *model.UserAuth, error) {
	if token == "" {
		return nil, nil, ErrUserNotFound
	}

	var (
		user *model.User
		auth *model.UserAuth
	)
	start := time.Now()
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		query := fmt.Sprintf(`SELECT %s FROM users WHERE email_verification_token = $1 FOR UPDATE`, userColumns)
		loaded, err := scanUser(tx.QueryRow(ctx, query, token))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to load user for verification: %w", err)
		}

		uc := loaded.Changes()
		uc.EmailVerifiedAt.Set(&verifiedAt)
		uc.EmailVerificationToken.Set("")
		if user, err = r.updateUser(ctx, tx, uc); err != nil {
			return err
		}

		loadedAuth, err := getUserAuth(ctx, tx, "user_id", user.ID, true)
		if err != nil {
			return err
		}
		ac := loadedAuth.Changes()
		ac.EmailVerifiedAt.Set(&verifiedAt)
		auth, err = r.updateUserAuth(ctx, tx, ac)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	r.recordWrite(tableUsers, metrics.OpUpdate, start)
	r.recordWrite(tableUserAuths, metrics.OpUpdate, start)
	return user, auth, nil
}

func scanUser(row rowScanner) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.EmailVerificationToken,
		&user.EmailVerifiedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
