package ranking

import (
	"math"
	"testing"

	"github.com/forkful/dealfeed/internal/deal"
)

func scored(id, venue string, score float64) *Candidate {
	return &Candidate{
		Deal:          &deal.Deal{ID: id, VenueID: venue},
		WeightedScore: score,
	}
}

// TestCombine tests the weighted combination with renormalization by the
// weight sum (0.9 for the defaults).
func TestCombine(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name                        string
		relevance, quality, recency float64
		want                        float64
	}{
		{name: "all zero", want: 0},
		{name: "all one", relevance: 1, quality: 1, recency: 1, want: 1.0},
		{name: "relevance only", relevance: 1, want: 0.3 / 0.9},
		{name: "quality only", quality: 1, want: 0.4 / 0.9},
		{name: "recency only", recency: 1, want: 0.2 / 0.9},
		{name: "mixed", relevance: 0.5, quality: 0.25, recency: 1, want: (0.5*0.3 + 0.25*0.4 + 1*0.2) / 0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cfg.combine(tt.relevance, tt.quality, tt.recency)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("expected %f, got %f", tt.want, got)
			}
		})
	}
}

// TestCombine_EquivalentToNormalizedWeights verifies dividing by the
// weight sum produces the same result as pre-normalized weights
// 1/3, 4/9, 2/9.
func TestCombine_EquivalentToNormalizedWeights(t *testing.T) {
	cfg := DefaultConfig()

	rel, qual, rec := 0.7, 0.3, 0.9
	got := cfg.combine(rel, qual, rec)
	want := rel*(1.0/3.0) + qual*(4.0/9.0) + rec*(2.0/9.0)

	if math.Abs(got-want) > 1e-12 {
		t.Errorf("expected %f, got %f", want, got)
	}
}

// TestApplyDiversityPenalty_FirstOccurrenceInvariant tests that the first
// occurrence of a venue in iteration order is never penalized and the
// k-th is scaled by exactly 0.8^(k-1).
func TestApplyDiversityPenalty_FirstOccurrenceInvariant(t *testing.T) {
	candidates := []*Candidate{
		scored("d1", "tacos", 0.9),
		scored("d2", "tacos", 0.9),
		scored("d3", "tacos", 0.9),
		scored("d4", "tacos", 0.9),
	}

	applyDiversityPenalty(candidates, 0.8)

	for k, c := range candidates {
		want := 0.9 * math.Pow(0.8, float64(k)) // k is 0-based, penalty is 0.8^(n-1)
		if math.Abs(c.WeightedScore-want) > 1e-12 {
			t.Errorf("occurrence %d: expected %f, got %f", k+1, want, c.WeightedScore)
		}
	}
}

// TestApplyDiversityPenalty_MixedVenues tests counting per venue.
func TestApplyDiversityPenalty_MixedVenues(t *testing.T) {
	candidates := []*Candidate{
		scored("a1", "alpha", 1.0),
		scored("b1", "beta", 1.0),
		scored("a2", "alpha", 1.0),
		scored("b2", "beta", 1.0),
		scored("a3", "alpha", 1.0),
	}

	applyDiversityPenalty(candidates, 0.8)

	wants := []float64{1.0, 1.0, 0.8, 0.8, 0.64}
	for i, c := range candidates {
		if math.Abs(c.WeightedScore-wants[i]) > 1e-12 {
			t.Errorf("candidate %s: expected %f, got %f", c.Deal.ID, wants[i], c.WeightedScore)
		}
	}
}

// TestApplyDiversityPenalty_NoVenue verifies candidates without a venue
// pass through unmodified and do not consume occurrence counts.
func TestApplyDiversityPenalty_NoVenue(t *testing.T) {
	candidates := []*Candidate{
		scored("n1", "", 0.5),
		scored("n2", "", 0.5),
	}

	applyDiversityPenalty(candidates, 0.8)

	for _, c := range candidates {
		if c.WeightedScore != 0.5 {
			t.Errorf("venueless candidate modified: %f", c.WeightedScore)
		}
	}
}

// TestSortByScore_StableOnTies tests descending order with stable ties.
func TestSortByScore_StableOnTies(t *testing.T) {
	candidates := []*Candidate{
		scored("low", "v1", 0.1),
		scored("tie-a", "v2", 0.5),
		scored("tie-b", "v3", 0.5),
		scored("high", "v4", 0.9),
	}

	sortByScore(candidates)

	wantOrder := []string{"high", "tie-a", "tie-b", "low"}
	for i, want := range wantOrder {
		if candidates[i].Deal.ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, candidates[i].Deal.ID)
		}
	}
}

// TestPerturb_FivePool tests that with exactly 5 distinctly scored
// candidates, the pre-sort lowest lands at index 3 and no other relative
// order changes.
func TestPerturb_FivePool(t *testing.T) {
	candidates := []*Candidate{
		scored("1st", "v", 0.9),
		scored("2nd", "v", 0.7),
		scored("3rd", "v", 0.5),
		scored("4th", "v", 0.3),
		scored("5th", "v", 0.1),
	}

	got := perturb(candidates, 5, 3)

	wantOrder := []string{"1st", "2nd", "3rd", "5th", "4th"}
	for i, want := range wantOrder {
		if got[i].Deal.ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, got[i].Deal.ID)
		}
	}
}

// TestPerturb_SubFivePassthrough tests that pools smaller than 5 are
// returned in plain sorted order with no perturbation.
func TestPerturb_SubFivePassthrough(t *testing.T) {
	for size := 0; size < 5; size++ {
		candidates := make([]*Candidate, size)
		for i := range candidates {
			candidates[i] = scored(string(rune('a'+i)), "v", float64(size-i))
		}

		got := perturb(candidates, 5, 3)
		if len(got) != size {
			t.Fatalf("size %d: length changed to %d", size, len(got))
		}
		for i := range candidates {
			if got[i] != candidates[i] {
				t.Errorf("size %d: order changed at %d", size, i)
			}
		}
	}
}

// TestPerturb_LargerPool tests a 6-element pool: last moves to index 3,
// the two it displaces shift right.
func TestPerturb_LargerPool(t *testing.T) {
	candidates := []*Candidate{
		scored("a", "v", 6), scored("b", "v", 5), scored("c", "v", 4),
		scored("d", "v", 3), scored("e", "v", 2), scored("f", "v", 1),
	}

	got := perturb(candidates, 5, 3)

	wantOrder := []string{"a", "b", "c", "f", "d", "e"}
	for i, want := range wantOrder {
		if got[i].Deal.ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, got[i].Deal.ID)
		}
	}
}
