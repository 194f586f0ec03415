package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/forkful/dealfeed/internal/middleware"
	"github.com/forkful/dealfeed/internal/prefs"
)

// PreferenceHandlers holds dependencies for cuisine preference HTTP handlers.
type PreferenceHandlers struct {
	store prefs.Store
}

// NewPreferenceHandlers creates a new PreferenceHandlers instance.
func NewPreferenceHandlers(store prefs.Store) *PreferenceHandlers {
	return &PreferenceHandlers{store: store}
}

// PreferencesResponse represents a user's cuisine preference set.
type PreferencesResponse struct {
	UserID   string   `json:"user_id"`
	Cuisines []string `json:"cuisines"`
}

// PreferencesRequest represents the request body for replacing a
// preference set.
type PreferencesRequest struct {
	Cuisines []string `json:"cuisines"`
}

// GetPreferences handles GET /users/{id}/preferences.
func (h *PreferenceHandlers) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		Error(w, r, http.StatusBadRequest, ErrCodeValidation, "user id is required")
		return
	}

	cuisines, err := h.store.CuisinePreferences(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to load preferences",
			"user_id", userID,
			"error", err)
		Error(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to load preferences")
		return
	}
	if cuisines == nil {
		cuisines = []string{}
	}

	writeJSON(w, r.Context(), http.StatusOK, PreferencesResponse{
		UserID:   userID,
		Cuisines: cuisines,
	})
}

// SetPreferences handles PUT /users/{id}/preferences - replaces the
// user's cuisine selections. Callers may only modify their own
// preferences when authenticated.
func (h *PreferenceHandlers) SetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		Error(w, r, http.StatusBadRequest, ErrCodeValidation, "user id is required")
		return
	}

	if authed := middleware.GetUserID(r.Context()); authed != "" && authed != userID {
		Error(w, r, http.StatusForbidden, ErrCodeAuthFailed, "Cannot modify another user's preferences")
		return
	}

	var req PreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}
	for _, c := range req.Cuisines {
		if c == "" {
			Error(w, r, http.StatusBadRequest, ErrCodeValidation, "cuisine IDs must be non-empty")
			return
		}
	}

	if err := h.store.SetCuisinePreferences(r.Context(), userID, req.Cuisines); err != nil {
		slog.ErrorContext(r.Context(), "failed to save preferences",
			"user_id", userID,
			"error", err)
		Error(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to save preferences")
		return
	}

	cuisines := req.Cuisines
	if cuisines == nil {
		cuisines = []string{}
	}
	writeJSON(w, r.Context(), http.StatusOK, PreferencesResponse{
		UserID:   userID,
		Cuisines: cuisines,
	})
}
