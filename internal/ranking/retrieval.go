package ranking

import (
	"context"
	"fmt"

	"github.com/forkful/dealfeed/internal/geo"
)

// retrieve runs the adaptive radius search: starting at the configured
// initial radius and doubling on every empty result, up to the attempt
// budget. Returns the candidate envelopes and the number of attempts made.
//
// An empty result after all attempts is not an error; low-density areas
// legitimately have no deals. A lookup failure is fatal and is never
// retried at a different radius.
func (s *Service) retrieve(ctx context.Context, p geo.Point) ([]*Candidate, int, error) {
	radius := s.cfg.InitialRadiusMiles

	for attempt := 1; attempt <= s.cfg.MaxRadiusAttempts; attempt++ {
		deals, err := s.sources.Deals.FindNearby(ctx, p, radius)
		if err != nil {
			return nil, attempt, fmt.Errorf("nearby deals lookup at radius %.0f: %w", radius, err)
		}
		if len(deals) > 0 {
			candidates := make([]*Candidate, 0, len(deals))
			for _, d := range deals {
				c := &Candidate{Deal: d}
				if d.Location != nil {
					dist := geo.DistanceMiles(p, *d.Location)
					c.DistanceMiles = &dist
				}
				candidates = append(candidates, c)
			}
			return candidates, attempt, nil
		}
		radius *= 2
	}

	return nil, s.cfg.MaxRadiusAttempts, nil
}
