package store

import (
	"context"
	"database/sql"
	"errors"
)

// LikeRepository handles persistence for the per-user like relation.
// The (user_id, listing_id) pair is the primary key, so the relation
// keeps set semantics under concurrency.
type LikeRepository struct {
	db *sql.DB
}

func NewLikeRepository(db *sql.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// Toggle flips the user's membership in the listing's liked-by set and
// returns the new state. The insert-first idiom makes concurrent
// toggles on the same pair converge: only one insert can win, the
// loser falls through to the delete.
func (r *LikeRepository) Toggle(ctx context.Context, userID, listingID int) (bool, error) {
	const insertQuery = `
		INSERT INTO listing_likes (user_id, listing_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, listing_id) DO NOTHING`
	result, err := r.db.ExecContext(ctx, insertQuery, userID, listingID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, ErrNotFound
		}
		return false, err
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if inserted > 0 {
		return true, nil
	}

	const deleteQuery = `DELETE FROM listing_likes WHERE user_id = $1 AND listing_id = $2`
	if _, err := r.db.ExecContext(ctx, deleteQuery, userID, listingID); err != nil {
		return false, err
	}
	return false, nil
}

// Count returns the number of distinct users who currently like the
// listing.
func (r *LikeRepository) Count(ctx context.Context, listingID int) (int, error) {
	const query = `SELECT COUNT(1) FROM listing_likes WHERE listing_id = $1`
	var count int
	if err := r.db.QueryRowContext(ctx, query, listingID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// HasLiked reports whether the user currently likes the listing.
func (r *LikeRepository) HasLiked(ctx context.Context, userID, listingID int) (bool, error) {
	const query = `SELECT 1 FROM listing_likes WHERE user_id = $1 AND listing_id = $2`
	var one int
	err := r.db.QueryRowContext(ctx, query, userID, listingID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
