package types

// Manufacturer is immutable reference data attached to listings.
type Manufacturer struct {
	// ID is the unique identifier of the manufacturer.
	ID int `json:"id" db:"id"`

	// Name is the manufacturer's display name.
	Name string `json:"name" db:"name"`

	// Country is the manufacturer's country of origin.
	Country string `json:"country" db:"country"`
}

// Tag is a free-form label shared across listings. Names are unique.
type Tag struct {
	// ID is the unique identifier of the tag.
	ID int `json:"id" db:"id"`

	// Name is the unique tag name.
	Name string `json:"name" db:"name"`
}
