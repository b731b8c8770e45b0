package types

import "time"

// Comment is a single entry in a listing's append-only comment thread.
// Comments are never edited; they disappear only when the listing they
// belong to is deleted.
type Comment struct {
	// ID is the unique identifier of the comment. IDs are assigned in
	// insertion order and break ties when timestamps collide.
	ID int64 `json:"id" db:"id"`

	// ListingID is the identifier of the listing the comment belongs to.
	ListingID int `json:"listing_id" db:"listing_id"`

	// AuthorID is the identifier of the commenting user.
	AuthorID int `json:"author_id" db:"author_id"`

	// Text is the comment body. Always non-empty after trimming.
	Text string `json:"text" db:"text"`

	// CreatedAt is the timestamp at which the comment was posted.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
