package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPostCommentTrimsText(t *testing.T) {
	svc := NewCommentService(newFakeCommentRepo())

	comment, err := svc.Post(context.Background(), 1, 10, "  Nice car!  ")
	require.NoError(t, err)
	require.Equal(t, "Nice car!", comment.Text)
	require.Equal(t, 1, comment.AuthorID)
	require.Equal(t, 10, comment.ListingID)
}

func TestPostCommentRejectsEmptyText(t *testing.T) {
	svc := NewCommentService(newFakeCommentRepo())

	_, err := svc.Post(context.Background(), 1, 10, "")
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Post(context.Background(), 1, 10, "   \t\n ")
	require.ErrorIs(t, err, ErrValidation)
}

func TestPostCommentRequiresAuthentication(t *testing.T) {
	svc := NewCommentService(newFakeCommentRepo())

	_, err := svc.Post(context.Background(), AnonymousActor, 10, "hello")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestListForReturnsThreadInOrder(t *testing.T) {
	svc := NewCommentService(newFakeCommentRepo())

	first, err := svc.Post(context.Background(), 1, 10, "first")
	require.NoError(t, err)
	second, err := svc.Post(context.Background(), 2, 10, "second")
	require.NoError(t, err)
	_, err = svc.Post(context.Background(), 2, 11, "other listing")
	require.NoError(t, err)

	comments, err := svc.ListFor(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	require.Equal(t, first.ID, comments[0].ID)
	require.Equal(t, second.ID, comments[1].ID)
}
