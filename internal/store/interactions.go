package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/forkful/dealfeed/internal/deal"
)

// InteractionStore is a PostgreSQL implementation of deal.InteractionRepository.
// Interactions are append-only; there is no update or delete path.
type InteractionStore struct {
	db *sql.DB
}

// NewInteractionStore creates a Postgres-backed interaction repository.
func NewInteractionStore(db *sql.DB) *InteractionStore {
	return &InteractionStore{db: db}
}

// Append records an interaction event.
func (s *InteractionStore) Append(ctx context.Context, in *deal.Interaction) error {
	if in.ID == "" {
		in.ID = uuid.New().String()
	}

	var createdAt sql.NullTime
	if !in.CreatedAt.IsZero() {
		createdAt = sql.NullTime{Time: in.CreatedAt, Valid: true}
	}

	query := `
		INSERT INTO interactions (id, deal_id, user_id, kind, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, NOW()))
		RETURNING created_at`

	err := s.db.QueryRowContext(ctx, query,
		in.ID, in.DealID, in.UserID, string(in.Kind), createdAt,
	).Scan(&in.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting interaction: %w", err)
	}
	return nil
}

// ListByDeals returns all interactions referencing any of the given deal IDs.
func (s *InteractionStore) ListByDeals(ctx context.Context, dealIDs []string) ([]*deal.Interaction, error) {
	if len(dealIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, deal_id, user_id, kind, created_at
		FROM interactions
		WHERE deal_id = ANY($1)`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(dealIDs))
	if err != nil {
		return nil, fmt.Errorf("querying interactions: %w", err)
	}
	defer rows.Close()

	var result []*deal.Interaction
	for rows.Next() {
		var in deal.Interaction
		var kind string
		if err := rows.Scan(&in.ID, &in.DealID, &in.UserID, &kind, &in.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning interaction row: %w", err)
		}
		in.Kind = deal.InteractionKind(kind)
		result = append(result, &in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating interaction rows: %w", err)
	}
	return result, nil
}
