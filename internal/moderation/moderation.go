// Package moderation provides block relationships and report records
// used to gate deals out of ranked feeds.
package moderation

import (
	"context"
	"sync"
	"time"
)

// Block is a directed edge from a blocker to a blocked user.
type Block struct {
	BlockerID string    `json:"blocker_id"`
	BlockedID string    `json:"blocked_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Report is a user-to-deal edge recording a moderation flag.
type Report struct {
	ReporterID string    `json:"reporter_id"`
	DealID     string    `json:"deal_id"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// BlockStore defines block-relationship storage.
type BlockStore interface {
	// AddBlock records a directed block edge. Re-blocking is a no-op.
	AddBlock(ctx context.Context, blockerID, blockedID string) error

	// BlockedBy returns the set of user IDs that blockerID has blocked.
	BlockedBy(ctx context.Context, blockerID string) ([]string, error)
}

// ReportStore defines report-record storage.
type ReportStore interface {
	// AddReport records a report edge. A repeat report by the same user
	// for the same deal is a no-op.
	AddReport(ctx context.Context, rep *Report) error

	// CountByDeals returns the aggregate report count per deal across all
	// users, for the given deal IDs. Deals with zero reports are omitted.
	CountByDeals(ctx context.Context, dealIDs []string) (map[string]int, error)

	// ReportedBy returns the subset of dealIDs that userID has reported.
	ReportedBy(ctx context.Context, dealIDs []string, userID string) ([]string, error)
}

// InMemoryBlockStore is an in-memory implementation of BlockStore.
// Thread-safe via RWMutex.
type InMemoryBlockStore struct {
	mu     sync.RWMutex
	blocks map[string]map[string]time.Time // blocker -> blocked -> when
}

// NewInMemoryBlockStore creates a new in-memory block store.
func NewInMemoryBlockStore() *InMemoryBlockStore {
	return &InMemoryBlockStore{
		blocks: make(map[string]map[string]time.Time),
	}
}

// AddBlock records a directed block edge.
func (s *InMemoryBlockStore) AddBlock(ctx context.Context, blockerID, blockedID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.blocks[blockerID] == nil {
		s.blocks[blockerID] = make(map[string]time.Time)
	}
	if _, exists := s.blocks[blockerID][blockedID]; !exists {
		s.blocks[blockerID][blockedID] = time.Now()
	}
	return nil
}

// BlockedBy returns the set of user IDs that blockerID has blocked.
func (s *InMemoryBlockStore) BlockedBy(ctx context.Context, blockerID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	edges := s.blocks[blockerID]
	result := make([]string, 0, len(edges))
	for blocked := range edges {
		result = append(result, blocked)
	}
	return result, nil
}

// InMemoryReportStore is an in-memory implementation of ReportStore.
// Thread-safe via RWMutex.
type InMemoryReportStore struct {
	mu      sync.RWMutex
	reports map[string]map[string]*Report // dealID -> reporterID -> report
}

// NewInMemoryReportStore creates a new in-memory report store.
func NewInMemoryReportStore() *InMemoryReportStore {
	return &InMemoryReportStore{
		reports: make(map[string]map[string]*Report),
	}
}

// AddReport records a report edge, deduplicating per (reporter, deal).
func (s *InMemoryReportStore) AddReport(ctx context.Context, rep *Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reports[rep.DealID] == nil {
		s.reports[rep.DealID] = make(map[string]*Report)
	}
	if _, exists := s.reports[rep.DealID][rep.ReporterID]; exists {
		return nil
	}

	stored := *rep
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.reports[rep.DealID][rep.ReporterID] = &stored
	return nil
}

// CountByDeals returns the aggregate report count per deal.
func (s *InMemoryReportStore) CountByDeals(ctx context.Context, dealIDs []string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]int)
	for _, id := range dealIDs {
		if n := len(s.reports[id]); n > 0 {
			result[id] = n
		}
	}
	return result, nil
}

// ReportedBy returns the subset of dealIDs that userID has reported.
func (s *InMemoryReportStore) ReportedBy(ctx context.Context, dealIDs []string, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []string
	for _, id := range dealIDs {
		if _, ok := s.reports[id][userID]; ok {
			result = append(result, id)
		}
	}
	return result, nil
}
