package store

import (
	"context"
	"database/sql"
	"fmt"
)

// PreferenceStore is a PostgreSQL-backed store for onboarding cuisine
// selections. It satisfies the ranking pipeline's preference source.
type PreferenceStore struct {
	db *sql.DB
}

// NewPreferenceStore creates a Postgres-backed preference store.
func NewPreferenceStore(db *sql.DB) *PreferenceStore {
	return &PreferenceStore{db: db}
}

// CuisinePreferences returns the user's selected cuisine IDs. An empty
// result is meaningful and must not be treated as an error.
func (s *PreferenceStore) CuisinePreferences(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT cuisine_id FROM cuisine_preferences WHERE user_id = $1", userID)
	if err != nil {
		return nil, fmt.Errorf("querying cuisine preferences: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var cuisine string
		if err := rows.Scan(&cuisine); err != nil {
			return nil, fmt.Errorf("scanning preference row: %w", err)
		}
		result = append(result, cuisine)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating preference rows: %w", err)
	}
	return result, nil
}

// SetCuisinePreferences replaces the user's cuisine selections atomically.
func (s *PreferenceStore) SetCuisinePreferences(ctx context.Context, userID string, cuisines []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning preference transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM cuisine_preferences WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("clearing cuisine preferences: %w", err)
	}

	for _, cuisine := range cuisines {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO cuisine_preferences (user_id, cuisine_id) VALUES ($1, $2)",
			userID, cuisine); err != nil {
			return fmt.Errorf("inserting cuisine preference: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing preference transaction: %w", err)
	}
	return nil
}
