package ranking

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/forkful/dealfeed/internal/geo"
)

// Request outcome labels for metrics.
const (
	outcomeOK    = "ok"
	outcomeEmpty = "empty"
	outcomeError = "error"
)

// Request carries the inputs for one ranking invocation.
type Request struct {
	UserID   string
	Location geo.Point

	// Market selects the distance-decay rule. There is no market
	// detection service yet, so callers pass their configured default;
	// unknown codes resolve to the DEFAULT rule.
	Market string
}

// Service is the stateless ranking engine. One Rank call processes one
// request to completion; there is no shared mutable state across requests.
type Service struct {
	cfg     *Config
	sources Sources
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics sets the pipeline metrics. Defaults to unregistered metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a ranking service over the given data sources.
func NewService(cfg *Config, sources Sources, opts ...Option) *Service {
	s := &Service{
		cfg:     cfg,
		sources: sources,
		logger:  slog.Default(),
		metrics: NewMetrics(),
		tracer:  otel.Tracer("ranking"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rank executes the full pipeline for one request and returns the final
// ordered feed. An empty feed (no nearby deals, or everything gated) is a
// successful empty slice, never an error; only retrieval failures and
// genuinely unexpected errors propagate.
func (s *Service) Rank(ctx context.Context, req Request) ([]RankedDeal, error) {
	ctx, span := s.tracer.Start(ctx, "ranking.Rank",
		trace.WithAttributes(attribute.String("market", req.Market)))
	defer span.End()

	// Stage 1: candidate retrieval with adaptive radius.
	stageStart := s.now()
	candidates, attempts, err := s.retrieve(ctx, req.Location)
	s.metrics.ObserveStage("retrieval", s.now().Sub(stageStart).Seconds())
	if err != nil {
		s.metrics.IncRequests(outcomeError)
		return nil, err
	}
	s.metrics.ObserveRetrieval(len(candidates), attempts)
	s.debugStage(ctx, "retrieval", len(candidates), "attempts", attempts)
	if len(candidates) == 0 {
		return s.emptyFeed(), nil
	}

	// Stage 2: safety gating, block gate then report gate.
	stageStart = s.now()
	candidates = s.applyBlockGate(ctx, req.UserID, candidates)
	s.debugStage(ctx, "block_gate", len(candidates))
	if len(candidates) == 0 {
		s.metrics.ObserveStage("gating", s.now().Sub(stageStart).Seconds())
		return s.emptyFeed(), nil
	}
	candidates = s.applyReportGate(ctx, req.UserID, candidates)
	s.metrics.ObserveStage("gating", s.now().Sub(stageStart).Seconds())
	s.debugStage(ctx, "report_gate", len(candidates))
	if len(candidates) == 0 {
		return s.emptyFeed(), nil
	}
	s.metrics.ObserveRanked(len(candidates))

	// Stage 3: component scoring over the surviving pool.
	stageStart = s.now()
	s.score(ctx, req, candidates)
	s.metrics.ObserveStage("scoring", s.now().Sub(stageStart).Seconds())

	// Stage 4: combination, diversity penalty, sort, perturbation.
	stageStart = s.now()
	for _, c := range candidates {
		c.WeightedScore = s.cfg.combine(c.Relevance, c.Quality, c.Recency)
	}
	applyDiversityPenalty(candidates, s.cfg.DiversityDecay)
	sortByScore(candidates)
	candidates = perturb(candidates, s.cfg.PerturbMinPool, s.cfg.PerturbInsertIndex)
	s.metrics.ObserveStage("ordering", s.now().Sub(stageStart).Seconds())

	// Stage 5: response assembly.
	result := make([]RankedDeal, len(candidates))
	for i, c := range candidates {
		result[i] = RankedDeal{DealID: c.Deal.ID, Distance: c.DistanceMiles}
	}
	s.metrics.IncRequests(outcomeOK)
	return result, nil
}

// score computes the three component scores for every candidate.
// Preference and engagement lookups fail open: degraded personalization
// or all-zero quality beats failing the whole feed request.
func (s *Service) score(ctx context.Context, req Request, candidates []*Candidate) {
	ctx, span := s.tracer.Start(ctx, "ranking.score")
	defer span.End()

	preferences, err := s.sources.Preferences.CuisinePreferences(ctx, req.UserID)
	if err != nil {
		s.logger.WarnContext(ctx, "cuisine-preference lookup failed, scoring without cuisine",
			"user_id", req.UserID,
			"error", err)
		preferences = nil
	}

	dealIDs := make([]string, len(candidates))
	for i, c := range candidates {
		dealIDs[i] = c.Deal.ID
	}

	now := s.now()
	interactions, err := s.sources.Engagement.ListByDeals(ctx, dealIDs)
	if err != nil {
		s.logger.WarnContext(ctx, "engagement lookup failed, quality scores zeroed",
			"error", err)
		interactions = nil
	}
	byDeal := aggregateEngagement(interactions, now, s.cfg.InteractionHalfLifeDays)
	scoreQuality(candidates, byDeal, s.cfg)

	for _, c := range candidates {
		c.Relevance = RelevanceScore(c, preferences, req.Market, s.cfg)
		c.Recency = RecencyScore(c.Deal.CreatedAt, now, s.cfg.RecencyHalfLifeHours)
	}
}

// emptyFeed records the empty outcome and returns a non-nil empty slice,
// so the response encodes as [] rather than null.
func (s *Service) emptyFeed() []RankedDeal {
	s.metrics.IncRequests(outcomeEmpty)
	s.metrics.IncEmptyFeeds()
	return []RankedDeal{}
}

// debugStage logs a per-stage candidate count when debug logging is on.
func (s *Service) debugStage(ctx context.Context, stage string, count int, extra ...any) {
	if !s.cfg.Debug {
		return
	}
	args := append([]any{"stage", stage, "candidates", count}, extra...)
	s.logger.DebugContext(ctx, "ranking stage complete", args...)
}
