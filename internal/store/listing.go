package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/lib/pq"

	"github.com/Swevix/WebRGZ/types"
)

// ListingRepository handles persistence for listings and their tag links.
type ListingRepository struct {
	db *sql.DB
}

func NewListingRepository(db *sql.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// ListingFilter narrows the administrative listing index.
type ListingFilter struct {
	// Status filters by publication state when non-nil.
	Status *types.ListingStatus

	// Query matches the listing title or author username (substring,
	// case-insensitive).
	Query string

	// PriceMin/PriceMax bound the price when non-nil.
	PriceMin *types.Price
	PriceMax *types.Price

	Offset int
	Limit  int
}

const listingColumns = `l.id, l.author_id, l.title, l.slug, l.description, l.price_cents,
	       l.image_key, l.manufacturer_id, l.status, l.created_at, l.updated_at`

func scanListing(scanner interface{ Scan(...any) error }) (types.Listing, error) {
	var listing types.Listing
	var imageKey sql.NullString
	var manufacturerID sql.NullInt64
	err := scanner.Scan(
		&listing.ID,
		&listing.AuthorID,
		&listing.Title,
		&listing.Slug,
		&listing.Description,
		&listing.Price,
		&imageKey,
		&manufacturerID,
		&listing.Status,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	)
	if err != nil {
		return types.Listing{}, err
	}
	listing.ImageKey = imageKey.String
	listing.ManufacturerID = int(manufacturerID.Int64)
	return listing, nil
}

func nullableID(id int) any {
	if id == 0 {
		return nil
	}
	return id
}

func (r *ListingRepository) Create(ctx context.Context, listing types.Listing, tagIDs []int) (types.Listing, error) {
	now := time.Now()
	listing.CreatedAt = now
	listing.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Listing{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const query = `
		INSERT INTO listings (author_id, title, slug, description, price_cents, image_key, manufacturer_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10)
		RETURNING id`
	err = tx.QueryRowContext(
		ctx,
		query,
		listing.AuthorID,
		listing.Title,
		listing.Slug,
		listing.Description,
		listing.Price,
		listing.ImageKey,
		nullableID(listing.ManufacturerID),
		listing.Status,
		listing.CreatedAt,
		listing.UpdatedAt,
	).Scan(&listing.ID)
	if err != nil {
		if isUniqueViolation(err, "listings_slug_key") {
			return types.Listing{}, ErrDuplicateSlug
		}
		if isForeignKeyViolation(err) {
			return types.Listing{}, ErrNotFound
		}
		return types.Listing{}, err
	}

	if err := replaceTagLinks(ctx, tx, listing.ID, tagIDs); err != nil {
		return types.Listing{}, err
	}
	if err := tx.Commit(); err != nil {
		return types.Listing{}, err
	}

	return r.GetByID(ctx, listing.ID)
}

// Update rewrites the mutable listing fields. The slug, author and
// publication status are never touched here.
func (r *ListingRepository) Update(ctx context.Context, listing types.Listing, tagIDs []int) (types.Listing, error) {
	listing.UpdatedAt = time.Now()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Listing{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const query = `
		UPDATE listings
		SET title = $1,
			description = $2,
			price_cents = $3,
			image_key = NULLIF($4, ''),
			manufacturer_id = $5,
			updated_at = $6
		WHERE id = $7`
	result, err := tx.ExecContext(
		ctx,
		query,
		listing.Title,
		listing.Description,
		listing.Price,
		listing.ImageKey,
		nullableID(listing.ManufacturerID),
		listing.UpdatedAt,
		listing.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return types.Listing{}, ErrNotFound
		}
		return types.Listing{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Listing{}, err
	}
	if affected == 0 {
		return types.Listing{}, ErrNotFound
	}

	if err := replaceTagLinks(ctx, tx, listing.ID, tagIDs); err != nil {
		return types.Listing{}, err
	}
	if err := tx.Commit(); err != nil {
		return types.Listing{}, err
	}

	return r.GetByID(ctx, listing.ID)
}

// Delete removes a listing. Comments, like rows and tag links go with
// it through ON DELETE CASCADE.
func (r *ListingRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM listings WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id int) (types.Listing, error) {
	const query = `SELECT ` + listingColumns + ` FROM listings l WHERE l.id = $1`
	listing, err := scanListing(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Listing{}, ErrNotFound
		}
		return types.Listing{}, err
	}
	return r.attachTags(ctx, listing)
}

func (r *ListingRepository) GetBySlug(ctx context.Context, slug string) (types.Listing, error) {
	const query = `SELECT ` + listingColumns + ` FROM listings l WHERE l.slug = $1`
	listing, err := scanListing(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Listing{}, ErrNotFound
		}
		return types.Listing{}, err
	}
	return r.attachTags(ctx, listing)
}

// ListPublished returns the public listing page, newest first with the
// title as a deterministic tie-break.
func (r *ListingRepository) ListPublished(ctx context.Context, offset, limit int) ([]types.Listing, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	const countQuery = `SELECT COUNT(1) FROM listings WHERE status = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, types.StatusPublished).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT ` + listingColumns + `
		FROM listings l
		WHERE l.status = $1
		ORDER BY l.created_at DESC, l.title ASC
		OFFSET $2 LIMIT $3`
	rows, err := r.db.QueryContext(ctx, listQuery, types.StatusPublished, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	listings, err := collectListings(rows, limit)
	if err != nil {
		return nil, 0, err
	}
	listings, err = r.attachTagsAll(ctx, listings)
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

// ListFiltered returns the administrative index over all statuses.
func (r *ListingRepository) ListFiltered(ctx context.Context, filter ListingFilter) ([]types.Listing, int, error) {
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}

	where := ` WHERE 1=1`
	args := []any{}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += ` AND l.status = $` + strconv.Itoa(len(args))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (l.title ILIKE $` + n + ` OR u.username ILIKE $` + n + `)`
	}
	if filter.PriceMin != nil {
		args = append(args, *filter.PriceMin)
		where += ` AND l.price_cents >= $` + strconv.Itoa(len(args))
	}
	if filter.PriceMax != nil {
		args = append(args, *filter.PriceMax)
		where += ` AND l.price_cents <= $` + strconv.Itoa(len(args))
	}

	const from = ` FROM listings l JOIN users u ON u.id = l.author_id`

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1)`+from+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Offset)
	offsetArg := strconv.Itoa(len(args))
	args = append(args, filter.Limit)
	limitArg := strconv.Itoa(len(args))

	query := `SELECT ` + listingColumns + from + where +
		` ORDER BY l.created_at DESC, l.title ASC OFFSET $` + offsetArg + ` LIMIT $` + limitArg
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	listings, err := collectListings(rows, filter.Limit)
	if err != nil {
		return nil, 0, err
	}
	listings, err = r.attachTagsAll(ctx, listings)
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

// SetStatus transitions every listing in ids to the given status in a
// single statement. The returned count is the number of rows matched
// by the update, so already-converged rows still count.
func (r *ListingRepository) SetStatus(ctx context.Context, ids []int, status types.ListingStatus) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	const query = `
		UPDATE listings
		SET status = $1,
			updated_at = $2
		WHERE id = ANY($3)`
	result, err := r.db.ExecContext(ctx, query, status, time.Now(), pq.Array(ids))
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func collectListings(rows *sql.Rows, capacity int) ([]types.Listing, error) {
	defer rows.Close()

	listings := make([]types.Listing, 0, capacity)
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return listings, nil
}

func replaceTagLinks(ctx context.Context, tx *sql.Tx, listingID int, tagIDs []int) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM listing_tags WHERE listing_id = $1`, listingID); err != nil {
		return err
	}
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO listing_tags (listing_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			listingID,
			tagID,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *ListingRepository) attachTags(ctx context.Context, listing types.Listing) (types.Listing, error) {
	listings, err := r.attachTagsAll(ctx, []types.Listing{listing})
	if err != nil {
		return types.Listing{}, err
	}
	return listings[0], nil
}

func (r *ListingRepository) attachTagsAll(ctx context.Context, listings []types.Listing) ([]types.Listing, error) {
	if len(listings) == 0 {
		return listings, nil
	}

	ids := make([]int, 0, len(listings))
	for _, listing := range listings {
		ids = append(ids, listing.ID)
	}

	const query = `
		SELECT lt.listing_id, t.name
		FROM listing_tags lt
		JOIN tags t ON t.id = lt.tag_id
		WHERE lt.listing_id = ANY($1)
		ORDER BY t.name`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[int][]string, len(listings))
	for rows.Next() {
		var listingID int
		var name string
		if err := rows.Scan(&listingID, &name); err != nil {
			return nil, err
		}
		names[listingID] = append(names[listingID], name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range listings {
		listings[i].Tags = names[listings[i].ID]
	}
	return listings, nil
}
