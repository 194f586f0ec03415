package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/forkful/dealfeed/internal/deal"
	"github.com/forkful/dealfeed/internal/geo"
	"github.com/forkful/dealfeed/internal/middleware"
	"github.com/forkful/dealfeed/internal/moderation"
)

// DealHandlers holds dependencies for deal HTTP handlers.
type DealHandlers struct {
	deals        deal.Repository
	interactions deal.InteractionRepository
	reports      moderation.ReportStore
}

// NewDealHandlers creates a new DealHandlers instance.
func NewDealHandlers(deals deal.Repository, interactions deal.InteractionRepository, reports moderation.ReportStore) *DealHandlers {
	return &DealHandlers{
		deals:        deals,
		interactions: interactions,
		reports:      reports,
	}
}

// CreateDealRequest represents the request body for creating a deal.
type CreateDealRequest struct {
	VenueID   string     `json:"venue_id"`
	AuthorID  string     `json:"author_id,omitempty"`
	CuisineID *string    `json:"cuisine_id,omitempty"`
	Title     string     `json:"title"`
	Location  *geo.Point `json:"location,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// CreateDeal handles POST /deals - creates a new deal.
func (h *DealHandlers) CreateDeal(w http.ResponseWriter, r *http.Request) {
	var req CreateDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	authorID := middleware.GetUserID(r.Context())
	if authorID == "" {
		authorID = req.AuthorID
	}
	if authorID == "" {
		Error(w, r, http.StatusBadRequest, ErrCodeValidation, "author_id is required")
		return
	}
	if req.VenueID == "" {
		Error(w, r, http.StatusBadRequest, ErrCodeValidation, "venue_id is required")
		return
	}
	if req.Title == "" {
		Error(w, r, http.StatusBadRequest, ErrCodeValidation, "title is required")
		return
	}
	if req.Location != nil && !req.Location.Valid() {
		Error(w, r, http.StatusBadRequest, ErrCodeInvalidLocation, "latitude/longitude outside valid coordinate ranges")
		return
	}

	d := &deal.Deal{
		VenueID:   req.VenueID,
		AuthorID:  authorID,
		CuisineID: req.CuisineID,
		Title:     req.Title,
		Location:  req.Location,
		ExpiresAt: req.ExpiresAt,
	}

	if err := h.deals.Create(r.Context(), d); err != nil {
		slog.ErrorContext(r.Context(), "failed to create deal",
			"venue_id", req.VenueID,
			"error", err)
		Error(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to create deal")
		return
	}

	writeJSON(w, r.Context(), http.StatusCreated, d)
}

// GetDeal handles GET /deals/{id} - retrieves a single deal.
func (h *DealHandlers) GetDeal(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		Error(w, r, http.StatusBadRequest, ErrCodeValidation, "deal id is required")
		return
	}

	d, err := h.deals.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, deal.ErrDealNotFound) {
			Error(w, r, http.StatusNotFound, ErrCodeNotFound, "Deal not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get deal", "deal_id", id, "error", err)
		Error(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to get deal")
		return
	}

	writeJSON(w, r.Context(), http.StatusOK, d)
}

// InteractionRequest represents the request body for recording an interaction.
type InteractionRequest struct {
	UserID string               `json:"user_id,omitempty"`
	Kind   deal.InteractionKind `json:"kind"`
	Reason string               `json:"reason,omitempty"`
}

// AddInteraction handles POST /deals/{id}/interactions - records a user
// action against a deal. View interactions also bump the deal's view
// counter; report interactions also write a moderation report.
func (h *DealHandlers) AddInteraction(w http.ResponseWriter, r *http.Request) {
	dealID := r.PathValue("id")
	if dealID == "" {
		Error(w, r, http.StatusBadRequest, ErrCodeValidation, "deal id is required")
		return
	}

	var req InteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		userID = req.UserID
	}
	if userID == "" {
		Error(w, r, http.StatusBadRequest, ErrCodeValidation, "user_id is required")
		return
	}
	if !deal.ValidInteractionKind(req.Kind) {
		Error(w, r, http.StatusBadRequest, ErrCodeInvalidInteraction, "Unrecognized interaction kind: "+string(req.Kind))
		return
	}

	d, err := h.deals.GetByID(r.Context(), dealID)
	if err != nil {
		if errors.Is(err, deal.ErrDealNotFound) {
			Error(w, r, http.StatusNotFound, ErrCodeNotFound, "Deal not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to load deal for interaction",
			"deal_id", dealID,
			"error", err)
		Error(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to record interaction")
		return
	}
	if d.ExpiresAt != nil && d.ExpiresAt.Before(time.Now()) {
		Error(w, r, http.StatusGone, ErrCodeDealExpired, "Deal has expired")
		return
	}

	in := &deal.Interaction{
		DealID: dealID,
		UserID: userID,
		Kind:   req.Kind,
	}
	if err := h.interactions.Append(r.Context(), in); err != nil {
		slog.ErrorContext(r.Context(), "failed to record interaction",
			"deal_id", dealID,
			"kind", req.Kind,
			"error", err)
		Error(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to record interaction")
		return
	}

	// Side effects are best-effort: the interaction itself is already
	// durable, so failures here are logged rather than surfaced.
	switch req.Kind {
	case deal.InteractionView:
		if err := h.deals.IncrementViews(r.Context(), dealID); err != nil {
			slog.WarnContext(r.Context(), "failed to bump view counter",
				"deal_id", dealID,
				"error", err)
		}
	case deal.InteractionReport:
		rep := &moderation.Report{
			ReporterID: userID,
			DealID:     dealID,
			Reason:     req.Reason,
		}
		if err := h.reports.AddReport(r.Context(), rep); err != nil {
			slog.WarnContext(r.Context(), "failed to record report from interaction",
				"deal_id", dealID,
				"error", err)
		}
	}

	writeJSON(w, r.Context(), http.StatusCreated, in)
}
