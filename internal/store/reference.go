package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/Swevix/WebRGZ/types"
)

// ReferenceRepository handles persistence for manufacturers and tags.
type ReferenceRepository struct {
	db *sql.DB
}

func NewReferenceRepository(db *sql.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

func (r *ReferenceRepository) ListManufacturers(ctx context.Context) ([]types.Manufacturer, error) {
	const query = `SELECT id, name, country FROM manufacturers ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	manufacturers := make([]types.Manufacturer, 0)
	for rows.Next() {
		var m types.Manufacturer
		if err := rows.Scan(&m.ID, &m.Name, &m.Country); err != nil {
			return nil, err
		}
		manufacturers = append(manufacturers, m)
	}
	return manufacturers, rows.Err()
}

func (r *ReferenceRepository) GetManufacturer(ctx context.Context, id int) (types.Manufacturer, error) {
	const query = `SELECT id, name, country FROM manufacturers WHERE id = $1`
	var m types.Manufacturer
	err := r.db.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.Name, &m.Country)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Manufacturer{}, ErrNotFound
		}
		return types.Manufacturer{}, err
	}
	return m, nil
}

func (r *ReferenceRepository) CreateManufacturer(ctx context.Context, m types.Manufacturer) (types.Manufacturer, error) {
	const query = `INSERT INTO manufacturers (name, country) VALUES ($1, $2) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, m.Name, m.Country).Scan(&m.ID); err != nil {
		return types.Manufacturer{}, err
	}
	return m, nil
}

func (r *ReferenceRepository) ListTags(ctx context.Context) ([]types.Tag, error) {
	const query = `SELECT id, name FROM tags ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := make([]types.Tag, 0)
	for rows.Next() {
		var tag types.Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// GetTagsByName resolves tag names to tag rows. Missing names are
// simply absent from the result; the caller decides whether that is an
// error.
func (r *ReferenceRepository) GetTagsByName(ctx context.Context, names []string) ([]types.Tag, error) {
	if len(names) == 0 {
		return nil, nil
	}

	const query = `SELECT id, name FROM tags WHERE name = ANY($1) ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(names))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := make([]types.Tag, 0, len(names))
	for rows.Next() {
		var tag types.Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func (r *ReferenceRepository) CreateTag(ctx context.Context, tag types.Tag) (types.Tag, error) {
	const query = `INSERT INTO tags (name) VALUES ($1) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, tag.Name).Scan(&tag.ID); err != nil {
		if isUniqueViolation(err, "") {
			return types.Tag{}, ErrDuplicate
		}
		return types.Tag{}, err
	}
	return tag, nil
}
