package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/spendfolio/spendfolio/internal/model"
)

// GetUserByExternalID returns the user with the given external identifier,
// or nil if no such user exists.
func (s *SQLiteStorage) GetUserByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(externalID, "externalID"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, external_id, created_at
		FROM users
		WHERE external_id = ?`

	var user model.User
	err := s.db.QueryRowContext(ctx, query, externalID).Scan(
		&user.ID, &user.ExternalID, &user.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

// SaveUser inserts a user if it does not already exist.
func (s *SQLiteStorage) SaveUser(ctx context.Context, user *model.User) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateUser(user); err != nil {
		return err
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO users (id, external_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(external_id) DO NOTHING`

	if _, err := s.db.ExecContext(ctx, query, user.ID, user.ExternalID, user.CreatedAt); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	return nil
}
