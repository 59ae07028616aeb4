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

const userAuthColumns = `id, user_id, email, api_key, email_verified_at, created_at, updated_at`

func insertUserAuth(ctx context.Context, q querier, c *model.UserAuthChanges) error {
	query := `
		INSERT INTO user_auths (` + userAuthColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := q.Exec(ctx, query,
		c.ID,
		c.UserID.Value(),
		c.Email.Value(),
		c.APIKey.Value(),
		c.EmailVerifiedAt.Value(),
		c.CreatedAt.Value(),
		c.UpdatedAt.Value(),
	)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			if constraint == "idx_user_auths_api_key" {
				return ErrAPIKeyExists
			}
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user auth: %w", err)
	}
	return nil
}

// GetUserAuthByAPIKey retrieves the credential record owning an API key.
func (r *Repository) GetUserAuthByAPIKey(ctx context.Context, apiKey string) (*model.UserAuth, error) {
	return getUserAuth(ctx, r.pool, "api_key", apiKey, false)
}

// GetUserAuthByUserID retrieves the credential record of a user.
func (r *Repository) GetUserAuthByUserID(ctx context.Context, userID string) (*model.UserAuth, error) {
	return getUserAuth(ctx, r.pool, "user_id", userID, false)
}

func getUserAuth(ctx context.Context, q querier, column string, value any, forUpdate bool) (*model.UserAuth, error) {
	query := fmt.Sprintf(`SELECT %s FROM user_auths WHERE %s = $1`, userAuthColumns, column)
	if forUpdate {
		query += ` FOR UPDATE`
	}

	auth, err := scanUserAuth(q.QueryRow(ctx, query, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserAuthNotFound
		}
		return nil, fmt.Errorf("failed to get user auth by %s: %w", column, err)
	}
	return auth, nil
}

// UpdateUserAuth writes the explicitly set fields of c. The API key column is
// never part of the statement.
func (r *Repository) UpdateUserAuth(ctx context.Context, c *model.UserAuthChanges) (*model.UserAuth, error) {
	start := time.Now()
	auth, err := r.updateUserAuth(ctx, r.pool, c)
	if err != nil {
		return nil, err
	}
	r.recordWrite(tableUserAuths, metrics.OpUpdate, start)
	return auth, nil
}

func (r *Repository) updateUserAuth(ctx context.Context, q querier, c *model.UserAuthChanges) (*model.UserAuth, error) {
	if err := r.normalize(tableUserAuths, c, false); err != nil {
		return nil, err
	}

	var set updateSet
	setField(&set, "email", c.Email, nil)
	setField(&set, "email_verified_at", c.EmailVerifiedAt, nil)
	setField(&set, "updated_at", c.UpdatedAt, nil)

	query, args := set.build(tableUserAuths, c.ID, userAuthColumns)
	auth, err := scanUserAuth(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserAuthNotFound
		}
		if _, ok := uniqueViolation(err); ok {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to update user auth: %w", err)
	}
	return auth, nil
}

func scanUserAuth(row rowScanner) (*model.UserAuth, error) {
	var auth model.UserAuth
	err := row.Scan(
		&auth.ID,
		&auth.UserID,
		&auth.Email,
		&auth.APIKey,
		&auth.EmailVerifiedAt,
		&auth.CreatedAt,
		&auth.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &auth, nil
}
