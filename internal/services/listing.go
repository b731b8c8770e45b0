package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/Swevix/WebRGZ/internal/storage"
	"github.com/Swevix/WebRGZ/internal/store"
	"github.com/Swevix/WebRGZ/types"
)

// ListingRepository defines persistence operations for listings.
type ListingRepository interface {
	ListPublished(ctx context.Context, offset, limit int) ([]types.Listing, int, error)
	ListFiltered(ctx context.Context, filter store.ListingFilter) ([]types.Listing, int, error)
	GetByID(ctx context.Context, id int) (types.Listing, error)
	GetBySlug(ctx context.Context, slug string) (types.Listing, error)
	Create(ctx context.Context, listing types.Listing, tagIDs []int) (types.Listing, error)
	Update(ctx context.Context, listing types.Listing, tagIDs []int) (types.Listing, error)
	Delete(ctx context.Context, id int) error
	SetStatus(ctx context.Context, ids []int, status types.ListingStatus) (int, error)
}

// ReferenceRepository defines persistence operations for manufacturers
// and tags.
type ReferenceRepository interface {
	ListManufacturers(ctx context.Context) ([]types.Manufacturer, error)
	GetManufacturer(ctx context.Context, id int) (types.Manufacturer, error)
	CreateManufacturer(ctx context.Context, m types.Manufacturer) (types.Manufacturer, error)
	ListTags(ctx context.Context) ([]types.Tag, error)
	GetTagsByName(ctx context.Context, names []string) ([]types.Tag, error)
	CreateTag(ctx context.Context, tag types.Tag) (types.Tag, error)
}

// ImageUpload carries an uploaded listing image.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ListingInput is the mutable part of a listing supplied by its author.
type ListingInput struct {
	Title          string
	Description    string
	Price          types.Price
	ManufacturerID int
	Tags           []string
	Image          *ImageUpload
}

// BulkStatus reports the outcome kind of a bulk status change.
type BulkStatus string

const (
	BulkSuccess        BulkStatus = "success"
	BulkPartialFailure BulkStatus = "partial_failure"
)

// BulkResult is the outcome of a bulk publish or unpublish.
type BulkResult struct {
	// Updated is the number of rows matched by the update.
	// Already-converged rows count too.
	Updated int `json:"updated"`

	// Status is BulkSuccess when every requested id was matched.
	Status BulkStatus `json:"status"`
}

// ListingService encapsulates listing use-cases: the publication state
// machine, slug derivation and owner-only mutation.
type ListingService struct {
	repo    ListingRepository
	refs    ReferenceRepository
	storage *storage.Storage
	gate    AccessGate
}

func NewListingService(repo ListingRepository, refs ReferenceRepository, imageStore *storage.Storage) *ListingService {
	return &ListingService{
		repo:    repo,
		refs:    refs,
		storage: imageStore,
	}
}

// Slugify derives a URL slug from a title: lower-cased with every
// whitespace rune turned into a hyphen. Derivation happens exactly
// once, at creation; the slug is immutable afterwards.
func Slugify(title string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '-'
		}
		return unicode.ToLower(r)
	}, strings.TrimSpace(title))
}

// ListPublished returns one page of published listings, newest first.
func (s *ListingService) ListPublished(ctx context.Context, offset, limit int) ([]types.Listing, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.ListPublished(ctx, offset, limit)
}

// ListAdmin returns the administrative index over all statuses.
func (s *ListingService) ListAdmin(ctx context.Context, filter store.ListingFilter) ([]types.Listing, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 5
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.repo.ListFiltered(ctx, filter)
}

// GetBySlug returns a listing visible to the actor. Drafts stay hidden
// from everyone but their author and surface as not-found.
func (s *ListingService) GetBySlug(ctx context.Context, actor int, slug string) (types.Listing, error) {
	listing, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return types.Listing{}, err
	}
	if !s.gate.CanView(actor, listing) {
		return types.Listing{}, store.ErrNotFound
	}
	return listing, nil
}

// Create validates the input, derives the slug and stores a new draft
// owned by the actor.
func (s *ListingService) Create(ctx context.Context, actor int, input ListingInput) (types.Listing, error) {
	if err := s.gate.RequireAuthenticated(actor); err != nil {
		return types.Listing{}, err
	}
	if err := s.validateInput(input); err != nil {
		return types.Listing{}, err
	}
	tagIDs, err := s.resolveTags(ctx, input.Tags)
	if err != nil {
		return types.Listing{}, err
	}
	if err := s.checkManufacturer(ctx, input.ManufacturerID); err != nil {
		return types.Listing{}, err
	}

	imageKey, err := s.storeImage(ctx, input.Image)
	if err != nil {
		return types.Listing{}, err
	}

	listing := types.Listing{
		AuthorID:       actor,
		Title:          input.Title,
		Slug:           Slugify(input.Title),
		Description:    input.Description,
		Price:          input.Price,
		ImageKey:       imageKey,
		ManufacturerID: input.ManufacturerID,
		Status:         types.StatusDraft,
	}
	created, err := s.repo.Create(ctx, listing, tagIDs)
	if err != nil {
		s.discardImage(imageKey)
		return types.Listing{}, err
	}
	return created, nil
}

// Update applies a patch to a listing. Only the author may; the slug
// is never recomputed.
func (s *ListingService) Update(ctx context.Context, actor, id int, input ListingInput) (types.Listing, error) {
	if err := s.gate.RequireAuthenticated(actor); err != nil {
		return types.Listing{}, err
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.Listing{}, err
	}
	if !s.gate.CanMutate(actor, current) {
		return types.Listing{}, ErrForbidden
	}
	if err := s.validateInput(input); err != nil {
		return types.Listing{}, err
	}
	tagIDs, err := s.resolveTags(ctx, input.Tags)
	if err != nil {
		return types.Listing{}, err
	}
	if err := s.checkManufacturer(ctx, input.ManufacturerID); err != nil {
		return types.Listing{}, err
	}

	imageKey := current.ImageKey
	if input.Image != nil {
		imageKey, err = s.storeImage(ctx, input.Image)
		if err != nil {
			return types.Listing{}, err
		}
	}

	updated, err := s.repo.Update(ctx, types.Listing{
		ID:             id,
		Title:          input.Title,
		Description:    input.Description,
		Price:          input.Price,
		ImageKey:       imageKey,
		ManufacturerID: input.ManufacturerID,
	}, tagIDs)
	if err != nil {
		if input.Image != nil {
			s.discardImage(imageKey)
		}
		return types.Listing{}, err
	}
	if input.Image != nil && current.ImageKey != "" {
		s.discardImage(current.ImageKey)
	}
	return updated, nil
}

// Delete removes a listing together with its comments and like rows.
// Only the author may.
func (s *ListingService) Delete(ctx context.Context, actor, id int) error {
	if err := s.gate.RequireAuthenticated(actor); err != nil {
		return err
	}
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.gate.CanMutate(actor, listing) {
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.discardImage(listing.ImageKey)
	return nil
}

// Publish bulk-transitions the listings to published and reports the
// matched-row count. Missing ids downgrade the outcome to a partial
// failure without undoing the rows that did match.
func (s *ListingService) Publish(ctx context.Context, ids []int) (BulkResult, error) {
	return s.setStatus(ctx, ids, types.StatusPublished)
}

// Unpublish bulk-transitions the listings back to draft.
func (s *ListingService) Unpublish(ctx context.Context, ids []int) (BulkResult, error) {
	return s.setStatus(ctx, ids, types.StatusDraft)
}

func (s *ListingService) setStatus(ctx context.Context, ids []int, status types.ListingStatus) (BulkResult, error) {
	unique := make([]int, 0, len(ids))
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return BulkResult{}, fmt.Errorf("%w: no listing ids given", ErrValidation)
	}

	updated, err := s.repo.SetStatus(ctx, unique, status)
	if err != nil {
		return BulkResult{}, err
	}

	result := BulkResult{Updated: updated, Status: BulkSuccess}
	if updated != len(unique) {
		result.Status = BulkPartialFailure
	}
	return result, nil
}

// OpenImage streams the stored image of a listing visible to the actor.
func (s *ListingService) OpenImage(ctx context.Context, actor int, slug string) (io.ReadCloser, error) {
	listing, err := s.GetBySlug(ctx, actor, slug)
	if err != nil {
		return nil, err
	}
	if listing.ImageKey == "" || s.storage == nil {
		return nil, store.ErrNotFound
	}
	return s.storage.Get(ctx, listing.ImageKey)
}

func (s *ListingService) validateInput(input ListingInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if input.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	return nil
}

func (s *ListingService) resolveTags(ctx context.Context, names []string) ([]int, error) {
	if len(names) == 0 {
		return nil, nil
	}
	tags, err := s.refs.GetTagsByName(ctx, names)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]int, len(tags))
	for _, tag := range tags {
		byName[tag.Name] = tag.ID
	}

	ids := make([]int, 0, len(names))
	for _, name := range names {
		id, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown tag %q", ErrValidation, name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *ListingService) checkManufacturer(ctx context.Context, id int) error {
	if id == 0 {
		return nil
	}
	if _, err := s.refs.GetManufacturer(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: unknown manufacturer %d", ErrValidation, id)
		}
		return err
	}
	return nil
}

func (s *ListingService) storeImage(ctx context.Context, image *ImageUpload) (string, error) {
	if image == nil {
		return "", nil
	}
	if s.storage == nil {
		return "", fmt.Errorf("%w: image uploads are not configured", ErrValidation)
	}
	if len(image.Data) == 0 {
		return "", fmt.Errorf("%w: empty image upload", ErrValidation)
	}

	key := "listings/" + uuid.New().String() + strings.ToLower(path.Ext(image.Filename))
	contentType := image.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := s.storage.Put(ctx, key, bytes.NewReader(image.Data), int64(len(image.Data)), contentType); err != nil {
		return "", err
	}
	return key, nil
}

func (s *ListingService) discardImage(key string) {
	if key == "" || s.storage == nil {
		return
	}
	if err := s.storage.Delete(context.Background(), key); err != nil {
		log.Printf("[WARN] failed to delete image object %s: %v", key, err)
	}
}
