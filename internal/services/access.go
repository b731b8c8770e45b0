package services

import "github.com/Swevix/WebRGZ/types"

// AnonymousActor is the actor id used for unauthenticated requests.
const AnonymousActor = 0

// AccessGate is the stateless authorization predicate layer. Every
// mutating listing, like and comment operation consults it before
// touching the store, which keeps the ownership rule visible and
// testable on its own instead of being folded into queries.
type AccessGate struct{}

// CanView reports whether the actor may see the listing: published
// listings are visible to anyone, drafts only to their author.
func (AccessGate) CanView(actor int, listing types.Listing) bool {
	return listing.Status == types.StatusPublished || actor == listing.AuthorID
}

// CanMutate reports whether the actor may update or delete the
// listing. Only the author may, regardless of status.
func (AccessGate) CanMutate(actor int, listing types.Listing) bool {
	return actor != AnonymousActor && actor == listing.AuthorID
}

// RequireAuthenticated fails with ErrUnauthenticated for anonymous
// actors.
func (AccessGate) RequireAuthenticated(actor int) error {
	if actor == AnonymousActor {
		return ErrUnauthenticated
	}
	return nil
}
