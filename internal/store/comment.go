package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/Swevix/WebRGZ/types"
)

// CommentRepository handles persistence for listing comments.
type CommentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create appends a comment to a listing's thread. A missing listing
// surfaces as ErrNotFound via the foreign key.
func (r *CommentRepository) Create(ctx context.Context, comment types.Comment) (types.Comment, error) {
	comment.CreatedAt = time.Now()

	const query = `
		INSERT INTO comments (listing_id, author_id, text, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	err := r.db.QueryRowContext(
		ctx,
		query,
		comment.ListingID,
		comment.AuthorID,
		comment.Text,
		comment.CreatedAt,
	).Scan(&comment.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return types.Comment{}, ErrNotFound
		}
		return types.Comment{}, err
	}
	return comment, nil
}

// ListForListing returns the full comment thread in creation order.
// The serial id breaks ties when timestamps collide.
func (r *CommentRepository) ListForListing(ctx context.Context, listingID int) ([]types.Comment, error) {
	const query = `
		SELECT id, listing_id, author_id, text, created_at
		FROM comments
		WHERE listing_id = $1
		ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]types.Comment, 0)
	for rows.Next() {
		var comment types.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.ListingID,
			&comment.AuthorID,
			&comment.Text,
			&comment.CreatedAt,
		); err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return comments, nil
}
