package services

import (
	"context"
)

// LikeRepository defines persistence operations for the like relation.
type LikeRepository interface {
	Toggle(ctx context.Context, userID, listingID int) (bool, error)
	Count(ctx context.Context, listingID int) (int, error)
	HasLiked(ctx context.Context, userID, listingID int) (bool, error)
}

// LikeService encapsulates the idempotent like toggle.
type LikeService struct {
	repo     LikeRepository
	listings ListingRepository
	gate     AccessGate
}

func NewLikeService(repo LikeRepository, listings ListingRepository) *LikeService {
	return &LikeService{repo: repo, listings: listings}
}

// Toggle flips the actor's like on a listing and returns the new state
// plus the current like count. Two consecutive toggles by the same
// user return the relation to its original state.
func (s *LikeService) Toggle(ctx context.Context, actor, listingID int) (liked bool, count int, err error) {
	if err := s.gate.RequireAuthenticated(actor); err != nil {
		return false, 0, err
	}
	if _, err := s.listings.GetByID(ctx, listingID); err != nil {
		return false, 0, err
	}
	liked, err = s.repo.Toggle(ctx, actor, listingID)
	if err != nil {
		return false, 0, err
	}
	count, err = s.repo.Count(ctx, listingID)
	if err != nil {
		return false, 0, err
	}
	return liked, count, nil
}

// Count returns how many distinct users like the listing.
func (s *LikeService) Count(ctx context.Context, listingID int) (int, error) {
	return s.repo.Count(ctx, listingID)
}

// HasLiked reports whether the actor currently likes the listing.
// Anonymous actors never do.
func (s *LikeService) HasLiked(ctx context.Context, actor, listingID int) (bool, error) {
	if actor == AnonymousActor {
		return false, nil
	}
	return s.repo.HasLiked(ctx, actor, listingID)
}
