package internal

import "context"

// Routing keys for the restaurant exchange. Downstream consumers dedupe
// by (id, version), so delivery is at-least-once and never awaited here.
const (
	SubjectRestaurantApproved       = "restaurant.approved.event"
	SubjectRestaurantUpdated        = "restaurant.updated.event"
	SubjectRestaurantDetailsUpdated = "restaurant.details.updated.event"
	SubjectRestaurantDeleted        = "restaurant.deleted.event"
)

// EventPublisher emits a domain event. Emission is fire and forget: the
// implementation logs failures and the engine never blocks on delivery.
type EventPublisher interface {
	Emit(ctx context.Context, subject string, payload any)
}

// RestaurantApprovedEvent carries the full public projection of a newly
// approved listing.
type RestaurantApprovedEvent struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Slug     string      `json:"slug"`
	TaxID    string      `json:"taxId"`
	Cuisine  []string    `json:"cuisine"`
	Images   []string    `json:"images"`
	Address  string      `json:"address"`
	Location *dbLocation `json:"location,omitempty"`
}

// RestaurantUpdatedEvent signals an approved change to the protected
// fields (name / tax id).
type RestaurantUpdatedEvent struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	TaxID   string `json:"taxId"`
	Version int64  `json:"version"`
}

// RestaurantDetailsUpdatedEvent carries only the mutable fields the
// triggering command changed; untouched fields are omitted.
type RestaurantDetailsUpdatedEvent struct {
	ID       string      `json:"id"`
	Cuisine  []string    `json:"cuisine,omitempty"`
	Address  string      `json:"address,omitempty"`
	Location *dbLocation `json:"location,omitempty"`
	Images   []string    `json:"images,omitempty"`
	Version  int64       `json:"version"`
}

type RestaurantDeletedEvent struct {
	ID      string `json:"id"`
	Version int64  `json:"version"`
}
