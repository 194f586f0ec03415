// Package deal provides models and repositories for time-limited
// promotional posts ("deals") and the interaction events recorded
// against them.
package deal

import (
	"errors"
	"time"

	"github.com/forkful/dealfeed/internal/geo"
)

// Common errors for deal operations.
var (
	ErrDealNotFound = errors.New("deal not found")
	ErrDealExpired  = errors.New("deal has expired")
)

// InteractionKind identifies the type of a user action against a deal.
type InteractionKind string

// Interaction kinds. These are the only values accepted on the wire;
// anything else is rejected at the API boundary.
const (
	InteractionSave         InteractionKind = "save"
	InteractionShare        InteractionKind = "share"
	InteractionClickThrough InteractionKind = "click_through"
	InteractionClickOpen    InteractionKind = "click_open"
	InteractionUpvote       InteractionKind = "upvote"
	InteractionDownvote     InteractionKind = "downvote"
	InteractionReport       InteractionKind = "report"
	InteractionView         InteractionKind = "view"
)

// AllInteractionKinds is the exhaustive list of valid interaction kinds.
var AllInteractionKinds = []InteractionKind{
	InteractionSave,
	InteractionShare,
	InteractionClickThrough,
	InteractionClickOpen,
	InteractionUpvote,
	InteractionDownvote,
	InteractionReport,
	InteractionView,
}

// ValidInteractionKind reports whether k is a recognized interaction kind.
func ValidInteractionKind(k InteractionKind) bool {
	for _, v := range AllInteractionKinds {
		if v == k {
			return true
		}
	}
	return false
}

// Deal represents a time-bounded promotional post eligible for ranking.
type Deal struct {
	ID        string  `json:"id"`
	VenueID   string  `json:"venue_id"`             // source entity (restaurant) the deal belongs to
	AuthorID  string  `json:"author_id"`            // user who posted the deal
	CuisineID *string `json:"cuisine_id,omitempty"` // optional cuisine category
	Title     string  `json:"title"`

	Location *geo.Point `json:"location,omitempty"`

	// Views is a monotonically incrementing counter bumped on view
	// interactions. It is read-only input to ranking.
	Views int64 `json:"views"`

	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Interaction is an immutable, append-only record of a user action
// against a deal. Interactions are never aggregated in place; quality
// scoring aggregates them per request, in memory.
type Interaction struct {
	ID        string          `json:"id"`
	DealID    string          `json:"deal_id"`
	UserID    string          `json:"user_id"`
	Kind      InteractionKind `json:"kind"`
	CreatedAt time.Time       `json:"created_at"`
}
