package ranking

import (
	"github.com/forkful/dealfeed/internal/deal"
)

// Candidate is the per-request scoring envelope wrapping one deal.
// It is created at retrieval, mutated through the scoring stages, and
// discarded after response assembly; the underlying deal is never
// written back.
type Candidate struct {
	Deal *deal.Deal

	// DistanceMiles is the distance from the requester, nil when the
	// deal has no resolvable location.
	DistanceMiles *float64

	Relevance     float64
	Quality       float64
	Recency       float64
	WeightedScore float64
}

// RankedDeal is one element of the final ordered response.
type RankedDeal struct {
	DealID   string   `json:"deal_id"`
	Distance *float64 `json:"distance"`
}
