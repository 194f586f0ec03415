package ranking

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// DefaultMarket is the fallback key in the market rules table. A market
// code with no entry always resolves to this entry, never to a zero rule.
const DefaultMarket = "DEFAULT"

// Weights defines the combination weights for the three component scores.
// The weighted score is divided by the live sum of these weights, so the
// defaults (0.3 + 0.4 + 0.2 = 0.9) produce the same ordering as normalized
// weights of 1/3, 4/9, 2/9 while keeping calibration overrides consistent.
type Weights struct {
	Relevance float64 `json:"relevance"` // Weight for personal relevance (default: 0.3)
	Quality   float64 `json:"quality"`   // Weight for engagement quality (default: 0.4)
	Recency   float64 `json:"recency"`   // Weight for recency (default: 0.2)
}

// MarketRule holds the distance-decay parameters for one market.
// A dense urban market uses a short half-life to sharply favor nearby
// deals; the default entry uses a longer one.
type MarketRule struct {
	HalfLifeMiles float64 `json:"half_life_miles"` // distance at which the decay score halves
	CutoffMiles   float64 `json:"cutoff_miles"`    // hard cutoff; beyond this the distance score is 0
}

// Config holds all tunables for the ranking pipeline.
type Config struct {
	Weights Weights `json:"weights"`

	// MarketRules maps market codes to distance-decay parameters. Must
	// contain a DefaultMarket entry.
	MarketRules map[string]MarketRule `json:"market_rules"`

	// InitialRadiusMiles is the radius of the first nearby lookup. The
	// radius doubles on every empty result.
	InitialRadiusMiles float64 `json:"initial_radius_miles"`

	// MaxRadiusAttempts bounds the retrieval loop.
	MaxRadiusAttempts int `json:"max_radius_attempts"`

	// ReportThreshold is the aggregate report count at which a deal is
	// gated out regardless of who reported it.
	ReportThreshold int `json:"report_threshold"`

	// InteractionHalfLifeDays controls the per-interaction time decay in
	// quality scoring.
	InteractionHalfLifeDays float64 `json:"interaction_half_life_days"`

	// RecencyHalfLifeHours controls the deal-age decay.
	RecencyHalfLifeHours float64 `json:"recency_half_life_hours"`

	// EmptyPoolPriorStrength is the prior strength used when the pool
	// entering quality scoring is empty. That branch is unreachable in
	// practice because empty pools short-circuit after gating; the
	// constant is kept for defensive completeness.
	EmptyPoolPriorStrength float64 `json:"empty_pool_prior_strength"`

	// DiversityDecay is the per-repeat multiplier applied to the n-th
	// appearance (n >= 2) of the same venue: score *= decay^(n-1).
	DiversityDecay float64 `json:"diversity_decay"`

	// PerturbMinPool is the minimum pool size for the rank perturbation;
	// smaller pools pass through in plain sorted order.
	PerturbMinPool int `json:"perturb_min_pool"`

	// PerturbInsertIndex is the 0-based position the lowest-scoring deal
	// is moved to.
	PerturbInsertIndex int `json:"perturb_insert_index"`

	// Debug enables per-stage candidate-count logging at debug level.
	// A construction-time field rather than an env read so the behavior
	// is testable.
	Debug bool `json:"-"`
}

// DefaultConfig returns the default ranking configuration.
func DefaultConfig() *Config {
	return &Config{
		Weights: Weights{
			Relevance: 0.3,
			Quality:   0.4,
			Recency:   0.2,
		},
		MarketRules: map[string]MarketRule{
			DefaultMarket: {HalfLifeMiles: 10, CutoffMiles: 50},
			"OC":          {HalfLifeMiles: 4, CutoffMiles: 31},
		},
		InitialRadiusMiles:      31,
		MaxRadiusAttempts:       4,
		ReportThreshold:         2,
		InteractionHalfLifeDays: 15,
		RecencyHalfLifeHours:    48,
		EmptyPoolPriorStrength:  50,
		DiversityDecay:          0.8,
		PerturbMinPool:          5,
		PerturbInsertIndex:      3,
	}
}

// MarketRule resolves the distance-decay rule for a market code, falling
// back to the DefaultMarket entry for unknown codes.
func (c *Config) MarketRule(market string) MarketRule {
	if rule, ok := c.MarketRules[market]; ok {
		return rule
	}
	return c.MarketRules[DefaultMarket]
}

// calibrationFile represents the JSON structure of the calibration file.
type calibrationFile struct {
	Version     string                `json:"version"`
	Weights     Weights               `json:"weights"`
	MarketRules map[string]MarketRule `json:"market_rules"`
}

// LoadCalibration loads ranking tunables from a JSON calibration file and
// merges them over the defaults. Only non-zero weight values and complete
// market rule entries override; partial files degrade gracefully.
// On read or parse error, returns default config along with the error.
func LoadCalibration(filePath string) (*Config, error) {
	cfg := DefaultConfig()
	if filePath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		slog.Warn("failed to read ranking calibration, using defaults",
			"path", filePath,
			"error", err)
		return cfg, fmt.Errorf("failed to read calibration file: %w", err)
	}

	var file calibrationFile
	if err := json.Unmarshal(data, &file); err != nil {
		slog.Warn("failed to parse ranking calibration, using defaults",
			"path", filePath,
			"error", err)
		return cfg, fmt.Errorf("failed to parse calibration file: %w", err)
	}

	var overrides []string
	if file.Weights.Relevance != 0 {
		overrides = append(overrides, fmt.Sprintf("weights.relevance: %.2f -> %.2f", cfg.Weights.Relevance, file.Weights.Relevance))
		cfg.Weights.Relevance = file.Weights.Relevance
	}
	if file.Weights.Quality != 0 {
		overrides = append(overrides, fmt.Sprintf("weights.quality: %.2f -> %.2f", cfg.Weights.Quality, file.Weights.Quality))
		cfg.Weights.Quality = file.Weights.Quality
	}
	if file.Weights.Recency != 0 {
		overrides = append(overrides, fmt.Sprintf("weights.recency: %.2f -> %.2f", cfg.Weights.Recency, file.Weights.Recency))
		cfg.Weights.Recency = file.Weights.Recency
	}
	for market, rule := range file.MarketRules {
		if rule.HalfLifeMiles <= 0 || rule.CutoffMiles <= 0 {
			slog.Warn("ignoring invalid market rule in calibration",
				"market", market,
				"half_life_miles", rule.HalfLifeMiles,
				"cutoff_miles", rule.CutoffMiles)
			continue
		}
		overrides = append(overrides, fmt.Sprintf("market_rules.%s: {%.1f, %.1f}", market, rule.HalfLifeMiles, rule.CutoffMiles))
		cfg.MarketRules[market] = rule
	}

	if len(overrides) > 0 {
		slog.Info("loaded ranking calibration with overrides", "overrides", overrides)
	} else {
		slog.Info("loaded ranking calibration (using all defaults)")
	}

	return cfg, nil
}
