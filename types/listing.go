package types

import "time"

// ListingStatus is the publication state of a listing.
type ListingStatus int

const (
	// StatusDraft is the initial state of every listing. Draft listings
	// are visible only to their author.
	StatusDraft ListingStatus = 0

	// StatusPublished makes a listing visible to everyone.
	StatusPublished ListingStatus = 1
)

// String returns a human-readable name for the status.
func (s ListingStatus) String() string {
	switch s {
	case StatusPublished:
		return "published"
	default:
		return "draft"
	}
}

// Listing represents a user-submitted catalog item.
type Listing struct {
	// ID is the unique identifier of the listing.
	ID int `json:"id" db:"id"`

	// AuthorID is the identifier of the user who created the listing.
	// Only the author may mutate or delete it.
	AuthorID int `json:"author_id" db:"author_id"`

	// Title is the human-readable name of the listing.
	Title string `json:"title" db:"title"`

	// Slug is the unique URL-safe identifier derived from Title at
	// creation time. It never changes afterwards.
	Slug string `json:"slug" db:"slug"`

	// Description contains the free-form listing text.
	Description string `json:"description" db:"description"`

	// Price is the asking price. Stored with exactly two decimal
	// places and never negative.
	Price Price `json:"price" db:"price_cents"`

	// ImageKey references the listing image in object storage. Empty
	// when no image was uploaded.
	ImageKey string `json:"image_key,omitempty" db:"image_key"`

	// ManufacturerID references the optional manufacturer.
	ManufacturerID int `json:"manufacturer_id,omitempty" db:"manufacturer_id"`

	// Tags are the tag names attached to the listing.
	Tags []string `json:"tags" db:"tags"`

	// Status is the publication state. Listings start as drafts and
	// only change state through an explicit publish or unpublish.
	Status ListingStatus `json:"status" db:"status"`

	// CreatedAt is the timestamp at which the listing was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
