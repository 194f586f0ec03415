package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/forkful/dealfeed/internal/middleware"
	"github.com/forkful/dealfeed/internal/moderation"
)

// BlockInvalidator drops any cached block set for a user after a write.
// Satisfied by cache.BlockCache; nil when no cache is configured.
type BlockInvalidator interface {
	Invalidate(ctx context.Context, blockerID string)
}

// ModerationHandlers holds dependencies for block and report HTTP handlers.
type ModerationHandlers struct {
	blocks      moderation.BlockStore
	reports     moderation.ReportStore
	invalidator BlockInvalidator
}

// NewModerationHandlers creates a new ModerationHandlers instance. The
// invalidator may be nil.
func NewModerationHandlers(blocks moderation.BlockStore, reports moderation.ReportStore, invalidator BlockInvalidator) *ModerationHandlers {
	return &ModerationHandlers{
		blocks:      blocks,
		reports:     reports,
		invalidator: invalidator,
	}
}

// BlockRequest represents the request body for blocking a user.
type BlockRequest struct {
	BlockerID string `json:"blocker_id,omitempty"`
	BlockedID string `json:"blocked_id"`
}

// Block handles POST /blocks - records a directed block edge from the
// caller to another user.
func (h *ModerationHandlers) Block(w http.ResponseWriter, r *http.Request) {
	var req BlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	blockerID := middleware.GetUserID(r.Context())
	if blockerID == "" {
		blockerID = req.BlockerID
	}
	if blockerID == "" {
		Error(w, r, http.StatusBadRequest, ErrCodeValidation, "blocker_id is required")
		return
	}
	if req.BlockedID == "" {
		Error(w, r, http.StatusBadRequest, ErrCodeValidation, "blocked_id is required")
		return
	}
	if req.BlockedID == blockerID {
		Error(w, r, http.StatusBadRequest, ErrCodeValidation, "cannot block yourself")
		return
	}

	if err := h.blocks.AddBlock(r.Context(), blockerID, req.BlockedID); err != nil {
		slog.ErrorContext(r.Context(), "failed to record block",
			"blocker_id", blockerID,
			"error", err)
		Error(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to record block")
		return
	}

	if h.invalidator != nil {
		h.invalidator.Invalidate(r.Context(), blockerID)
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReportRequest represents the request body for reporting a deal.
type ReportRequest struct {
	ReporterID string `json:"reporter_id,omitempty"`
	DealID     string `json:"deal_id"`
	Reason     string `json:"reason,omitempty"`
}

// Report handles POST /reports - records a report against a deal.
// Repeat reports by the same user are accepted and deduplicated.
func (h *ModerationHandlers) Report(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	reporterID := middleware.GetUserID(r.Context())
	if reporterID == "" {
		reporterID = req.ReporterID
	}
	if reporterID == "" {
		Error(w, r, http.StatusBadRequest, ErrCodeValidation, "reporter_id is required")
		return
	}
	if req.DealID == "" {
		Error(w, r, http.StatusBadRequest, ErrCodeValidation, "deal_id is required")
		return
	}

	rep := &moderation.Report{
		ReporterID: reporterID,
		DealID:     req.DealID,
		Reason:     req.Reason,
	}
	if err := h.reports.AddReport(r.Context(), rep); err != nil {
		slog.ErrorContext(r.Context(), "failed to record report",
			"deal_id", req.DealID,
			"error", err)
		Error(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to record report")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
