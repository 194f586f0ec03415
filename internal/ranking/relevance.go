package ranking

import (
	"math"
	"slices"
)

// Cuisine component values and combination weights for relevance scoring.
// An exact cuisine match scores full marks; a non-match or missing cuisine
// is softly penalized, not excluded.
const (
	cuisineMatchScore    = 1.0
	cuisineMismatchScore = 0.5

	cuisineWeight  = 2.0 / 3.0
	distanceWeight = 1.0 / 3.0
)

// RelevanceScore computes the personal relevance of one candidate for a
// requester: a cuisine component weighted 2/3 and a distance-decay
// component weighted 1/3.
//
// When the preference set is empty, cuisine contributes exactly zero and
// its weight is redirected entirely to distance. A user who skipped
// cuisine selection is not nudged by cuisine at all, as opposed to being
// treated as indifferent with a neutral score; the weights always sum to
// the same total influence.
func RelevanceScore(c *Candidate, preferences []string, market string, cfg *Config) float64 {
	distance := distanceScore(c.DistanceMiles, cfg.MarketRule(market))

	if len(preferences) == 0 {
		return distance
	}

	cuisine := cuisineMismatchScore
	if c.Deal.CuisineID != nil && slices.Contains(preferences, *c.Deal.CuisineID) {
		cuisine = cuisineMatchScore
	}

	return cuisineWeight*cuisine + distanceWeight*distance
}

// distanceScore applies exponential half-life decay to the candidate's
// distance: 0.5^(distance / halfLife), zero beyond the market's hard
// cutoff and zero when distance is unknown.
func distanceScore(distanceMiles *float64, rule MarketRule) float64 {
	if distanceMiles == nil {
		return 0
	}
	d := *distanceMiles
	if d < 0 {
		d = 0
	}
	if d > rule.CutoffMiles {
		return 0
	}
	if rule.HalfLifeMiles <= 0 {
		return 0
	}
	return math.Pow(0.5, d/rule.HalfLifeMiles)
}
