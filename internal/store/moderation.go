package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/forkful/dealfeed/internal/moderation"
)

// BlockStore is a PostgreSQL implementation of moderation.BlockStore.
type BlockStore struct {
	db *sql.DB
}

// NewBlockStore creates a Postgres-backed block store.
func NewBlockStore(db *sql.DB) *BlockStore {
	return &BlockStore{db: db}
}

// AddBlock records a directed block edge. Re-blocking is a no-op.
func (s *BlockStore) AddBlock(ctx context.Context, blockerID, blockedID string) error {
	query := `
		INSERT INTO blocks (blocker_id, blocked_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (blocker_id, blocked_id) DO NOTHING`

	if _, err := s.db.ExecContext(ctx, query, blockerID, blockedID); err != nil {
		return fmt.Errorf("inserting block: %w", err)
	}
	return nil
}

// BlockedBy returns the set of user IDs that blockerID has blocked.
func (s *BlockStore) BlockedBy(ctx context.Context, blockerID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT blocked_id FROM blocks WHERE blocker_id = $1", blockerID)
	if err != nil {
		return nil, fmt.Errorf("querying blocks: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var blocked string
		if err := rows.Scan(&blocked); err != nil {
			return nil, fmt.Errorf("scanning block row: %w", err)
		}
		result = append(result, blocked)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating block rows: %w", err)
	}
	return result, nil
}

// ReportStore is a PostgreSQL implementation of moderation.ReportStore.
type ReportStore struct {
	db *sql.DB
}

// NewReportStore creates a Postgres-backed report store.
func NewReportStore(db *sql.DB) *ReportStore {
	return &ReportStore{db: db}
}

// AddReport records a report edge. A repeat report by the same user for
// the same deal is a no-op.
func (s *ReportStore) AddReport(ctx context.Context, rep *moderation.Report) error {
	query := `
		INSERT INTO reports (reporter_id, deal_id, reason, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (reporter_id, deal_id) DO NOTHING`

	if _, err := s.db.ExecContext(ctx, query, rep.ReporterID, rep.DealID, rep.Reason); err != nil {
		return fmt.Errorf("inserting report: %w", err)
	}
	return nil
}

// CountByDeals returns the aggregate report count per deal across all
// users. Deals with zero reports are omitted.
func (s *ReportStore) CountByDeals(ctx context.Context, dealIDs []string) (map[string]int, error) {
	if len(dealIDs) == 0 {
		return map[string]int{}, nil
	}

	query := `
		SELECT deal_id, COUNT(*)
		FROM reports
		WHERE deal_id = ANY($1)
		GROUP BY deal_id`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(dealIDs))
	if err != nil {
		return nil, fmt.Errorf("querying report counts: %w", err)
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var dealID string
		var count int
		if err := rows.Scan(&dealID, &count); err != nil {
			return nil, fmt.Errorf("scanning report count row: %w", err)
		}
		result[dealID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating report count rows: %w", err)
	}
	return result, nil
}

// ReportedBy returns the subset of dealIDs that userID has reported.
func (s *ReportStore) ReportedBy(ctx context.Context, dealIDs []string, userID string) ([]string, error) {
	if len(dealIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT deal_id
		FROM reports
		WHERE reporter_id = $1 AND deal_id = ANY($2)`

	rows, err := s.db.QueryContext(ctx, query, userID, pq.Array(dealIDs))
	if err != nil {
		return nil, fmt.Errorf("querying own reports: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var dealID string
		if err := rows.Scan(&dealID); err != nil {
			return nil, fmt.Errorf("scanning report row: %w", err)
		}
		result = append(result, dealID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating report rows: %w", err)
	}
	return result, nil
}
