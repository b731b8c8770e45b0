package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Swevix/WebRGZ/types"
)

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment types.Comment) (types.Comment, error)
	ListForListing(ctx context.Context, listingID int) ([]types.Comment, error)
}

// CommentService encapsulates the append-only comment ledger.
type CommentService struct {
	repo CommentRepository
	gate AccessGate
}

func NewCommentService(repo CommentRepository) *CommentService {
	return &CommentService{repo: repo}
}

// Post appends a comment to a listing's thread. Any authenticated user
// may comment; the text must be non-empty after trimming. Posting is
// the one non-idempotent operation in the core, so callers must not
// auto-retry it.
func (s *CommentService) Post(ctx context.Context, actor, listingID int, text string) (types.Comment, error) {
	if err := s.gate.RequireAuthenticated(actor); err != nil {
		return types.Comment{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return types.Comment{}, fmt.Errorf("%w: comment text is required", ErrValidation)
	}
	return s.repo.Create(ctx, types.Comment{
		ListingID: listingID,
		AuthorID:  actor,
		Text:      text,
	})
}

// ListFor returns the full comment thread in creation order.
func (s *CommentService) ListFor(ctx context.Context, listingID int) ([]types.Comment, error) {
	return s.repo.ListForListing(ctx, listingID)
}
