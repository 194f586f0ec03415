package ranking

import (
	"context"

	"github.com/forkful/dealfeed/internal/deal"
	"github.com/forkful/dealfeed/internal/geo"
)

// DealSource provides the geospatial nearby-deals lookup. The engine treats
// it as a black box; any error it returns is fatal for the request.
type DealSource interface {
	FindNearby(ctx context.Context, p geo.Point, radiusMiles float64) ([]*deal.Deal, error)
}

// BlockSource provides the set of users the requester has blocked.
// Lookup errors are handled fail-open by the block gate.
type BlockSource interface {
	BlockedBy(ctx context.Context, blockerID string) ([]string, error)
}

// ReportSource provides aggregate report counts and the requester's own
// report subset. Lookup errors are handled fail-open by the report gate.
type ReportSource interface {
	CountByDeals(ctx context.Context, dealIDs []string) (map[string]int, error)
	ReportedBy(ctx context.Context, dealIDs []string, userID string) ([]string, error)
}

// PreferenceSource provides a user's onboarding cuisine selections. An
// empty set is meaningful: cuisine then contributes nothing to relevance.
type PreferenceSource interface {
	CuisinePreferences(ctx context.Context, userID string) ([]string, error)
}

// EngagementSource provides the raw interaction events for quality
// scoring; the engine aggregates them in memory per request.
type EngagementSource interface {
	ListByDeals(ctx context.Context, dealIDs []string) ([]*deal.Interaction, error)
}

// Sources bundles every data dependency of the pipeline.
type Sources struct {
	Deals       DealSource
	Blocks      BlockSource
	Reports     ReportSource
	Preferences PreferenceSource
	Engagement  EngagementSource
}
