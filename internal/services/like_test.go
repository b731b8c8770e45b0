package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Swevix/WebRGZ/internal/store"
)

func newLikeFixture(t *testing.T) (*LikeService, *ListingService) {
	t.Helper()
	listings := newFakeListingRepo()
	listingSvc := NewListingService(listings, newFakeReferenceRepo(), nil)
	return NewLikeService(newFakeLikeRepo(), listings), listingSvc
}

func TestLikeToggleFlipsState(t *testing.T) {
	svc, listingSvc := newLikeFixture(t)

	listing, err := listingSvc.Create(context.Background(), 1, ListingInput{Title: "Blue Sedan", Price: 100})
	require.NoError(t, err)

	liked, count, err := svc.Toggle(context.Background(), 2, listing.ID)
	require.NoError(t, err)
	require.True(t, liked)
	require.Equal(t, 1, count)

	// The second toggle restores the original state.
	liked, count, err = svc.Toggle(context.Background(), 2, listing.ID)
	require.NoError(t, err)
	require.False(t, liked)
	require.Equal(t, 0, count)
}

func TestLikeCountsDistinctUsers(t *testing.T) {
	svc, listingSvc := newLikeFixture(t)

	listing, err := listingSvc.Create(context.Background(), 1, ListingInput{Title: "Blue Sedan", Price: 100})
	require.NoError(t, err)

	_, _, err = svc.Toggle(context.Background(), 2, listing.ID)
	require.NoError(t, err)
	_, count, err := svc.Toggle(context.Background(), 3, listing.ID)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	liked, err := svc.HasLiked(context.Background(), 2, listing.ID)
	require.NoError(t, err)
	require.True(t, liked)

	liked, err = svc.HasLiked(context.Background(), 4, listing.ID)
	require.NoError(t, err)
	require.False(t, liked)
}

func TestLikeRequiresAuthentication(t *testing.T) {
	svc, listingSvc := newLikeFixture(t)

	listing, err := listingSvc.Create(context.Background(), 1, ListingInput{Title: "Blue Sedan", Price: 100})
	require.NoError(t, err)

	_, _, err = svc.Toggle(context.Background(), AnonymousActor, listing.ID)
	require.ErrorIs(t, err, ErrUnauthenticated)

	liked, err := svc.HasLiked(context.Background(), AnonymousActor, listing.ID)
	require.NoError(t, err)
	require.False(t, liked)
}

func TestLikeMissingListing(t *testing.T) {
	svc, _ := newLikeFixture(t)

	_, _, err := svc.Toggle(context.Background(), 1, 9999)
	require.ErrorIs(t, err, store.ErrNotFound)
}
