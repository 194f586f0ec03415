package ranking

import (
	"math"
	"sort"
)

// combine folds the three component scores into one weighted score,
// renormalized by the live sum of the weights. With the default weights
// the divisor is 0.9; dividing by the sum rather than a constant keeps a
// single-weight calibration override from silently rescaling everything.
func (c *Config) combine(relevance, quality, recency float64) float64 {
	sum := c.Weights.Relevance + c.Weights.Quality + c.Weights.Recency
	if sum <= 0 {
		return 0
	}
	return (relevance*c.Weights.Relevance + quality*c.Weights.Quality + recency*c.Weights.Recency) / sum
}

// applyDiversityPenalty dampens repeated appearances of the same venue.
// Iterating the pool in its existing order, the n-th occurrence (n >= 2)
// of a venue has its weighted score multiplied by decay^(n-1) in place.
// The first occurrence in iteration order is never penalized regardless
// of its score; candidates without a venue pass through unmodified.
func applyDiversityPenalty(candidates []*Candidate, decay float64) {
	seen := make(map[string]int)
	for _, c := range candidates {
		venue := c.Deal.VenueID
		if venue == "" {
			continue
		}
		seen[venue]++
		if n := seen[venue]; n >= 2 {
			c.WeightedScore *= math.Pow(decay, float64(n-1))
		}
	}
}

// sortByScore orders candidates descending by weighted score. The sort is
// stable so that equal-scored candidates keep their retrieval order.
func sortByScore(candidates []*Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].WeightedScore > candidates[j].WeightedScore
	})
}

// perturb applies the fixed rank perturbation: for pools of at least
// minPool candidates, the lowest-scoring (last) candidate is removed and
// reinserted at insertIndex, becoming the (insertIndex+1)-th result
// regardless of its score. Smaller pools pass through unchanged. The
// relative order of all other candidates is preserved.
func perturb(candidates []*Candidate, minPool, insertIndex int) []*Candidate {
	if len(candidates) < minPool {
		return candidates
	}
	if insertIndex < 0 || insertIndex >= len(candidates) {
		return candidates
	}

	last := candidates[len(candidates)-1]
	rest := candidates[:len(candidates)-1]

	result := make([]*Candidate, 0, len(candidates))
	result = append(result, rest[:insertIndex]...)
	result = append(result, last)
	result = append(result, rest[insertIndex:]...)
	return result
}
