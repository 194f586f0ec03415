package deal

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/forkful/dealfeed/internal/geo"
)

// Repository defines the interface for deal data operations.
type Repository interface {
	// Create inserts a new deal with a generated UUID.
	Create(ctx context.Context, d *Deal) error

	// GetByID retrieves a deal by its UUID.
	GetByID(ctx context.Context, id string) (*Deal, error)

	// FindNearby returns unexpired deals within radiusMiles of the given
	// point, each with its distance from the point populated by the
	// caller-facing lookup. Order is unspecified; ranking imposes order.
	FindNearby(ctx context.Context, p geo.Point, radiusMiles float64) ([]*Deal, error)

	// IncrementViews bumps the view counter for a deal.
	IncrementViews(ctx context.Context, id string) error
}

// InteractionRepository defines the interface for interaction event storage.
type InteractionRepository interface {
	// Append records an interaction event. Events are immutable once written.
	Append(ctx context.Context, in *Interaction) error

	// ListByDeals returns all interactions referencing any of the given
	// deal IDs.
	ListByDeals(ctx context.Context, dealIDs []string) ([]*Interaction, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
// Thread-safe via RWMutex.
type InMemoryRepository struct {
	mu    sync.RWMutex
	deals map[string]*Deal
	now   func() time.Time
}

// NewInMemoryRepository creates a new in-memory deal repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		deals: make(map[string]*Deal),
		now:   time.Now,
	}
}

// Create inserts a new deal, generating a UUID if none is set.
func (r *InMemoryRepository) Create(ctx context.Context, d *Deal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = r.now()
	}

	stored := *d
	r.deals[d.ID] = &stored
	return nil
}

// GetByID retrieves a deal by its UUID.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Deal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.deals[id]
	if !ok {
		return nil, ErrDealNotFound
	}

	// Return a copy to avoid external modification
	result := *d
	return &result, nil
}

// FindNearby returns unexpired deals within radiusMiles of p.
func (r *InMemoryRepository) FindNearby(ctx context.Context, p geo.Point, radiusMiles float64) ([]*Deal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.now()
	var result []*Deal
	for _, d := range r.deals {
		if d.ExpiresAt != nil && d.ExpiresAt.Before(now) {
			continue
		}
		if d.Location == nil {
			continue
		}
		if geo.DistanceMiles(p, *d.Location) > radiusMiles {
			continue
		}
		cp := *d
		result = append(result, &cp)
	}
	return result, nil
}

// IncrementViews bumps the view counter for a deal.
func (r *InMemoryRepository) IncrementViews(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.deals[id]
	if !ok {
		return ErrDealNotFound
	}
	d.Views++
	return nil
}

// InMemoryInteractionRepository is an in-memory implementation of
// InteractionRepository. Thread-safe via RWMutex.
type InMemoryInteractionRepository struct {
	mu     sync.RWMutex
	byDeal map[string][]*Interaction
	now    func() time.Time
}

// NewInMemoryInteractionRepository creates a new in-memory interaction repository.
func NewInMemoryInteractionRepository() *InMemoryInteractionRepository {
	return &InMemoryInteractionRepository{
		byDeal: make(map[string][]*Interaction),
		now:    time.Now,
	}
}

// Append records an interaction event.
func (r *InMemoryInteractionRepository) Append(ctx context.Context, in *Interaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if in.ID == "" {
		in.ID = uuid.New().String()
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = r.now()
	}

	stored := *in
	r.byDeal[in.DealID] = append(r.byDeal[in.DealID], &stored)
	return nil
}

// ListByDeals returns all interactions referencing any of the given deal IDs.
func (r *InMemoryInteractionRepository) ListByDeals(ctx context.Context, dealIDs []string) ([]*Interaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*Interaction
	for _, id := range dealIDs {
		for _, in := range r.byDeal[id] {
			cp := *in
			result = append(result, &cp)
		}
	}
	return result, nil
}
