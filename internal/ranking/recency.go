package ranking

import (
	"math"
	"time"
)

// RecencyScore computes the age-decay score for a deal:
// 0.5^(ageHours / halfLifeHours). There is no age cutoff; the score
// approaches zero asymptotically but age alone never gates a deal out.
// A missing creation timestamp yields 0; a future timestamp (clock skew)
// clamps to 1.
func RecencyScore(createdAt time.Time, now time.Time, halfLifeHours float64) float64 {
	if createdAt.IsZero() {
		return 0
	}
	if halfLifeHours <= 0 {
		return 0
	}

	ageHours := now.Sub(createdAt).Hours()
	if ageHours < 0 {
		return 1
	}
	return math.Pow(0.5, ageHours/halfLifeHours)
}
