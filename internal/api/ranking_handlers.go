package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/forkful/dealfeed/internal/geo"
	"github.com/forkful/dealfeed/internal/middleware"
	"github.com/forkful/dealfeed/internal/ranking"
)

// RankingRequest represents the request body for a feed ranking request.
type RankingRequest struct {
	UserID   string    `json:"user_id"`
	Location geo.Point `json:"location"`
}

// RankingHandlers holds dependencies for ranking HTTP handlers.
type RankingHandlers struct {
	svc           *ranking.Service
	defaultMarket string

	// allowAnonymous permits requests that carry a user_id in the body
	// without a Bearer token. Enabled outside production.
	allowAnonymous bool
}

// NewRankingHandlers creates a new RankingHandlers instance.
func NewRankingHandlers(svc *ranking.Service, defaultMarket string, allowAnonymous bool) *RankingHandlers {
	return &RankingHandlers{
		svc:            svc,
		defaultMarket:  defaultMarket,
		allowAnonymous: allowAnonymous,
	}
}

// Rank handles POST /rankings - computes the ranked deal feed for a user
// at a location.
func (h *RankingHandlers) Rank(w http.ResponseWriter, r *http.Request) {
	var req RankingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	authedUser := middleware.GetUserID(r.Context())
	if authedUser != "" && req.UserID != "" && authedUser != req.UserID {
		Error(w, r, http.StatusForbidden, ErrCodeAuthFailed, "user_id does not match the authenticated user")
		return
	}
	userID := authedUser
	if userID == "" {
		if !h.allowAnonymous {
			Error(w, r, http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
			return
		}
		userID = req.UserID
	}
	if userID == "" {
		Error(w, r, http.StatusBadRequest, ErrCodeValidation, "user_id is required")
		return
	}

	if !req.Location.Valid() {
		Error(w, r, http.StatusBadRequest, ErrCodeInvalidLocation, "latitude/longitude outside valid coordinate ranges")
		return
	}

	rankings, err := h.svc.Rank(r.Context(), ranking.Request{
		UserID:   userID,
		Location: req.Location,
		Market:   h.defaultMarket,
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "ranking request failed",
			"user_id", userID,
			"error", err)
		Error(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to rank deals")
		return
	}

	// The success body is the bare ordered array; an empty feed encodes
	// as [] rather than null.
	writeJSON(w, r.Context(), http.StatusOK, rankings)
}
