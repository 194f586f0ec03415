package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/forkful/dealfeed/internal/deal"
	"github.com/forkful/dealfeed/internal/geo"
	"github.com/forkful/dealfeed/internal/middleware"
	"github.com/forkful/dealfeed/internal/moderation"
	"github.com/forkful/dealfeed/internal/prefs"
	"github.com/forkful/dealfeed/internal/ranking"
)

// rankingFixture bundles the in-memory stores behind a ranking service
// so tests can seed data and issue requests against the handler.
type rankingFixture struct {
	handlers *RankingHandlers
	deals    *deal.InMemoryRepository
	blocks   *moderation.InMemoryBlockStore
}

func newRankingFixture(allowAnonymous bool) *rankingFixture {
	deals := deal.NewInMemoryRepository()
	blocks := moderation.NewInMemoryBlockStore()
	svc := ranking.NewService(ranking.DefaultConfig(), ranking.Sources{
		Deals:       deals,
		Blocks:      blocks,
		Reports:     moderation.NewInMemoryReportStore(),
		Preferences: prefs.NewInMemoryStore(),
		Engagement:  deal.NewInMemoryInteractionRepository(),
	})
	return &rankingFixture{
		handlers: NewRankingHandlers(svc, "DEFAULT", allowAnonymous),
		deals:    deals,
		blocks:   blocks,
	}
}

func (f *rankingFixture) rank(t *testing.T, body RankingRequest) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/rankings", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.handlers.Rank(w, req)
	return w
}

// TestRankHandler_Success tests a feed request over seeded nearby deals.
func TestRankHandler_Success(t *testing.T) {
	f := newRankingFixture(true)
	ctx := context.Background()

	near := geo.Point{Lat: 33.68, Lng: -117.82}
	for _, d := range []*deal.Deal{
		{ID: "d1", VenueID: "v1", AuthorID: "a1", Title: "Deal 1", Location: &near},
		{ID: "d2", VenueID: "v2", AuthorID: "a2", Title: "Deal 2", Location: &geo.Point{Lat: 33.70, Lng: -117.80}},
	} {
		if err := f.deals.Create(ctx, d); err != nil {
			t.Fatalf("failed to seed deal: %v", err)
		}
	}

	w := f.rank(t, RankingRequest{UserID: "u1", Location: near})

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	// The success body is the ordered array itself, not an envelope
	if !strings.HasPrefix(strings.TrimSpace(w.Body.String()), "[") {
		t.Fatalf("expected bare JSON array body, got %s", w.Body.String())
	}

	var rankings []ranking.RankedDeal
	if err := json.NewDecoder(w.Body).Decode(&rankings); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(rankings) != 2 {
		t.Fatalf("expected 2 ranked deals, got %d", len(rankings))
	}
	seen := map[string]bool{}
	for _, rd := range rankings {
		seen[rd.DealID] = true
		if rd.Distance == nil || *rd.Distance < 0 {
			t.Errorf("deal %s has missing or negative distance %v", rd.DealID, rd.Distance)
		}
	}
	if !seen["d1"] || !seen["d2"] {
		t.Errorf("expected d1 and d2 in feed, got %v", rankings)
	}
}

// TestRankHandler_EmptyFeed tests that no nearby deals produces an empty
// array, not null.
func TestRankHandler_EmptyFeed(t *testing.T) {
	f := newRankingFixture(true)

	w := f.rank(t, RankingRequest{UserID: "u1", Location: geo.Point{Lat: 33.68, Lng: -117.82}})

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("expected bare empty array body, got %s", got)
	}
}

// TestRankHandler_BlockedAuthorExcluded tests that blocked authors never
// reach the feed.
func TestRankHandler_BlockedAuthorExcluded(t *testing.T) {
	f := newRankingFixture(true)
	ctx := context.Background()

	near := geo.Point{Lat: 33.68, Lng: -117.82}
	for _, d := range []*deal.Deal{
		{ID: "ok", VenueID: "v1", AuthorID: "friendly", Title: "Deal", Location: &near},
		{ID: "hidden", VenueID: "v2", AuthorID: "hostile", Title: "Deal", Location: &near},
	} {
		if err := f.deals.Create(ctx, d); err != nil {
			t.Fatalf("failed to seed deal: %v", err)
		}
	}
	if err := f.blocks.AddBlock(ctx, "u1", "hostile"); err != nil {
		t.Fatalf("failed to seed block: %v", err)
	}

	w := f.rank(t, RankingRequest{UserID: "u1", Location: near})

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var rankings []ranking.RankedDeal
	if err := json.NewDecoder(w.Body).Decode(&rankings); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(rankings) != 1 || rankings[0].DealID != "ok" {
		t.Errorf("expected only 'ok' in feed, got %v", rankings)
	}
}

// TestRankHandler_UserMismatchForbidden tests that an authenticated user
// cannot request a feed as someone else.
func TestRankHandler_UserMismatchForbidden(t *testing.T) {
	f := newRankingFixture(true)

	data, _ := json.Marshal(RankingRequest{UserID: "someone-else", Location: geo.Point{Lat: 33.68, Lng: -117.82}})
	req := httptest.NewRequest(http.MethodPost, "/rankings", bytes.NewReader(data))
	req = req.WithContext(middleware.SetUserID(req.Context(), "token-user"))
	w := httptest.NewRecorder()
	f.handlers.Rank(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", w.Code)
	}
	var errResp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&errResp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if errResp.Error != ErrCodeAuthFailed {
		t.Errorf("expected error code %q, got %q", ErrCodeAuthFailed, errResp.Error)
	}
}

// TestRankHandler_AnonymousRejectedInProduction tests that without a
// token the request is rejected when anonymous access is off.
func TestRankHandler_AnonymousRejectedInProduction(t *testing.T) {
	f := newRankingFixture(false)

	w := f.rank(t, RankingRequest{UserID: "u1", Location: geo.Point{Lat: 33.68, Lng: -117.82}})

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
}

// TestRankHandler_InvalidLocation tests coordinate validation.
func TestRankHandler_InvalidLocation(t *testing.T) {
	f := newRankingFixture(true)

	w := f.rank(t, RankingRequest{UserID: "u1", Location: geo.Point{Lat: 100, Lng: 0}})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
	var errResp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&errResp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if errResp.Error != ErrCodeInvalidLocation {
		t.Errorf("expected error code %q, got %q", ErrCodeInvalidLocation, errResp.Error)
	}
}

// TestRankHandler_MissingUser tests that an anonymous request without a
// user_id is rejected.
func TestRankHandler_MissingUser(t *testing.T) {
	f := newRankingFixture(true)

	w := f.rank(t, RankingRequest{Location: geo.Point{Lat: 33.68, Lng: -117.82}})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
	var errResp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&errResp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if errResp.Error != ErrCodeValidation {
		t.Errorf("expected error code %q, got %q", ErrCodeValidation, errResp.Error)
	}
}

// TestRankHandler_InvalidJSON tests malformed request bodies.
func TestRankHandler_InvalidJSON(t *testing.T) {
	f := newRankingFixture(true)

	req := httptest.NewRequest(http.MethodPost, "/rankings", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	f.handlers.Rank(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}
