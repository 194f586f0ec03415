package api

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/forkful/dealfeed/internal/auth"
	"github.com/forkful/dealfeed/internal/middleware"
)

// RouterConfig carries the handlers and cross-cutting dependencies for
// the HTTP router. Optional fields may be nil; the corresponding
// middleware or endpoint is skipped.
type RouterConfig struct {
	Ranking     *RankingHandlers
	Deals       *DealHandlers
	Moderation  *ModerationHandlers
	Preferences *PreferenceHandlers
	Health      *HealthHandlers

	Logger     *slog.Logger
	JWTService *auth.JWTService
	Metrics    *middleware.Metrics
	Registry   *prometheus.Registry

	TracingEnabled bool
	ServiceName    string
}

// NewRouter assembles the full HTTP handler: all routes plus the
// middleware chain RequestID -> Tracing -> Logging -> HTTPMetrics -> Auth.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /rankings", cfg.Ranking.Rank)

	mux.HandleFunc("POST /deals", cfg.Deals.CreateDeal)
	mux.HandleFunc("GET /deals/{id}", cfg.Deals.GetDeal)
	mux.HandleFunc("POST /deals/{id}/interactions", cfg.Deals.AddInteraction)

	mux.HandleFunc("POST /blocks", cfg.Moderation.Block)
	mux.HandleFunc("POST /reports", cfg.Moderation.Report)

	mux.HandleFunc("GET /users/{id}/preferences", cfg.Preferences.GetPreferences)
	mux.HandleFunc("PUT /users/{id}/preferences", cfg.Preferences.SetPreferences)

	mux.HandleFunc("GET /health", cfg.Health.Health)
	mux.HandleFunc("GET /ready", cfg.Health.Ready)

	if cfg.Registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			Error(w, r, http.StatusNotFound, ErrCodeNotFound, "The requested resource was not found")
			return
		}
		writeJSON(w, r.Context(), http.StatusOK, map[string]string{
			"service": "dealfeed-api",
			"version": "0.1.0",
		})
	})

	var handler http.Handler = mux
	if cfg.JWTService != nil {
		handler = middleware.Authenticate(cfg.JWTService)(handler)
	}
	if cfg.Metrics != nil {
		handler = middleware.HTTPMetrics(cfg.Metrics)(handler)
	}
	if cfg.Logger != nil {
		handler = middleware.Logging(cfg.Logger)(handler)
	}
	if cfg.TracingEnabled {
		handler = middleware.Tracing(cfg.ServiceName)(handler)
	}
	return middleware.RequestID(handler)
}
