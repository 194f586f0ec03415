package ranking

import (
	"math"
	"sort"
	"time"

	"github.com/forkful/dealfeed/internal/deal"
)

// interactionWeights assigns a fixed signal weight to each interaction
// kind. Positive weights reward engagement; downvotes and reports count
// against a deal. Views carry no weight here — they form the evidence
// denominator instead.
var interactionWeights = map[deal.InteractionKind]float64{
	deal.InteractionSave:         3.0,
	deal.InteractionShare:        3.0,
	deal.InteractionClickThrough: 2.5,
	deal.InteractionClickOpen:    1.5,
	deal.InteractionUpvote:       1.0,
	deal.InteractionDownvote:     -2.0,
	deal.InteractionReport:       -3.0,
	deal.InteractionView:         0.0,
}

// epsilonEfficiency guards the observed-efficiency division.
const epsilonEfficiency = 1e-6

// epsilonNormalize is the degenerate-pool threshold for min-max
// normalization: below this spread every deal normalizes to 0.
const epsilonNormalize = 1e-6

// engagement accumulates the time-decayed interaction evidence for one deal.
type engagement struct {
	weightedPositives    float64 // sum of decayed weights > 0
	weightedNegativesAbs float64 // |sum of decayed weights <= 0|
}

// aggregateEngagement folds raw interaction events into per-deal
// engagement accumulators. Each event's weight is decayed by
// 0.5^(daysAgo / halfLifeDays); a future timestamp (clock skew) clamps
// the decay to 1.0 rather than erroring or amplifying.
func aggregateEngagement(interactions []*deal.Interaction, now time.Time, halfLifeDays float64) map[string]engagement {
	result := make(map[string]engagement)
	for _, in := range interactions {
		weight, known := interactionWeights[in.Kind]
		if !known {
			continue
		}

		daysAgo := now.Sub(in.CreatedAt).Hours() / 24
		decay := 1.0
		if daysAgo > 0 {
			decay = math.Pow(0.5, daysAgo/halfLifeDays)
		}

		v := weight * decay
		e := result[in.DealID]
		if v > 0 {
			e.weightedPositives += v
		} else {
			e.weightedNegativesAbs += -v
		}
		result[in.DealID] = e
	}
	return result
}

// evidence is the smoothing denominator basis for one deal: total views
// plus the absolute negative-interaction weight.
func (e engagement) evidence(views int64) float64 {
	return float64(views) + e.weightedNegativesAbs
}

// observedEfficiency is the raw engagement rate before smoothing.
func (e engagement) observedEfficiency(views int64) float64 {
	return e.weightedPositives / (float64(views) + e.weightedNegativesAbs + epsilonEfficiency)
}

// priorStrength returns the empirical-Bayes prior strength for a pool:
// the median of per-deal evidence. Median rather than mean keeps the
// prior robust to outlier high-traffic deals. For an empty pool the
// configured fallback applies — a branch that is unreachable in practice
// because empty pools short-circuit before quality scoring.
func priorStrength(evidences []float64, fallback float64) float64 {
	if len(evidences) == 0 {
		return fallback
	}
	sorted := make([]float64, len(evidences))
	copy(sorted, evidences)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// scoreQuality computes the normalized quality score for every candidate
// in the pool and writes it onto the envelopes.
//
// Per deal: observed efficiency is shrunk toward the pool's mean
// efficiency m with prior strength C (median evidence), then multiplied
// by log10(1 + views) so that volume is rewarded on top of the
// shrinkage-corrected rate. The result is min-max normalized across the
// pool, which is why quality scores are request-local rankings and never
// comparable across requests.
func scoreQuality(candidates []*Candidate, byDeal map[string]engagement, cfg *Config) {
	if len(candidates) == 0 {
		return
	}

	observed := make([]float64, len(candidates))
	evidences := make([]float64, len(candidates))
	for i, c := range candidates {
		e := byDeal[c.Deal.ID]
		observed[i] = e.observedEfficiency(c.Deal.Views)
		evidences[i] = e.evidence(c.Deal.Views)
	}

	var m float64
	for _, obs := range observed {
		m += obs
	}
	m /= float64(len(observed))

	prior := priorStrength(evidences, cfg.EmptyPoolPriorStrength)

	raw := make([]float64, len(candidates))
	for i, c := range candidates {
		ev := evidences[i]
		var smoothed float64
		if prior+ev > 0 {
			smoothed = (prior*m + ev*observed[i]) / (prior + ev)
		}
		raw[i] = smoothed * math.Log10(1+float64(c.Deal.Views))
	}

	min, max := raw[0], raw[0]
	for _, v := range raw[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	spread := max - min
	for i, c := range candidates {
		if spread < epsilonNormalize {
			c.Quality = 0
			continue
		}
		c.Quality = (raw[i] - min) / spread
	}
}
