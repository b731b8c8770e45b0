package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/Swevix/WebRGZ/internal/store"
	"github.com/Swevix/WebRGZ/types"
)

// In-memory repositories backing the service tests.

type fakeListingRepo struct {
	nextID   int
	listings map[int]types.Listing
	tagLinks map[int][]int
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{
		nextID:   1,
		listings: make(map[int]types.Listing),
		tagLinks: make(map[int][]int),
	}
}

func (r *fakeListingRepo) ListPublished(_ context.Context, offset, limit int) ([]types.Listing, int, error) {
	published := make([]types.Listing, 0)
	for _, listing := range r.listings {
		if listing.Status == types.StatusPublished {
			published = append(published, listing)
		}
	}
	sort.Slice(published, func(i, j int) bool {
		if !published[i].CreatedAt.Equal(published[j].CreatedAt) {
			return published[i].CreatedAt.After(published[j].CreatedAt)
		}
		return published[i].Title < published[j].Title
	})

	total := len(published)
	if offset >= len(published) {
		return []types.Listing{}, total, nil
	}
	published = published[offset:]
	if limit < len(published) {
		published = published[:limit]
	}
	return published, total, nil
}

func (r *fakeListingRepo) ListFiltered(_ context.Context, filter store.ListingFilter) ([]types.Listing, int, error) {
	matched := make([]types.Listing, 0)
	for _, listing := range r.listings {
		if filter.Status != nil && listing.Status != *filter.Status {
			continue
		}
		if filter.Query != "" &&
			!strings.Contains(strings.ToLower(listing.Title), strings.ToLower(filter.Query)) {
			continue
		}
		if filter.PriceMin != nil && listing.Price < *filter.PriceMin {
			continue
		}
		if filter.PriceMax != nil && listing.Price > *filter.PriceMax {
			continue
		}
		matched = append(matched, listing)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ID < matched[j].ID
	})

	total := len(matched)
	if filter.Offset >= len(matched) {
		return []types.Listing{}, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (r *fakeListingRepo) GetByID(_ context.Context, id int) (types.Listing, error) {
	listing, ok := r.listings[id]
	if !ok {
		return types.Listing{}, store.ErrNotFound
	}
	return listing, nil
}

func (r *fakeListingRepo) GetBySlug(_ context.Context, slug string) (types.Listing, error) {
	for _, listing := range r.listings {
		if listing.Slug == slug {
			return listing, nil
		}
	}
	return types.Listing{}, store.ErrNotFound
}

func (r *fakeListingRepo) Create(_ context.Context, listing types.Listing, tagIDs []int) (types.Listing, error) {
	for _, existing := range r.listings {
		if existing.Slug == listing.Slug {
			return types.Listing{}, store.ErrDuplicateSlug
		}
	}

	listing.ID = r.nextID
	r.nextID++
	listing.CreatedAt = time.Now()
	listing.UpdatedAt = listing.CreatedAt
	r.listings[listing.ID] = listing
	r.tagLinks[listing.ID] = tagIDs
	return listing, nil
}

func (r *fakeListingRepo) Update(_ context.Context, listing types.Listing, tagIDs []int) (types.Listing, error) {
	current, ok := r.listings[listing.ID]
	if !ok {
		return types.Listing{}, store.ErrNotFound
	}
	current.Title = listing.Title
	current.Description = listing.Description
	current.Price = listing.Price
	current.ImageKey = listing.ImageKey
	current.ManufacturerID = listing.ManufacturerID
	current.UpdatedAt = time.Now()
	r.listings[current.ID] = current
	r.tagLinks[current.ID] = tagIDs
	return current, nil
}

func (r *fakeListingRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.listings[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.listings, id)
	delete(r.tagLinks, id)
	return nil
}

func (r *fakeListingRepo) SetStatus(_ context.Context, ids []int, status types.ListingStatus) (int, error) {
	matched := 0
	for _, id := range ids {
		listing, ok := r.listings[id]
		if !ok {
			continue
		}
		listing.Status = status
		r.listings[id] = listing
		matched++
	}
	return matched, nil
}

type fakeReferenceRepo struct {
	manufacturers map[int]types.Manufacturer
	tags          map[string]types.Tag
	nextID        int
}

func newFakeReferenceRepo() *fakeReferenceRepo {
	return &fakeReferenceRepo{
		manufacturers: make(map[int]types.Manufacturer),
		tags:          make(map[string]types.Tag),
		nextID:        1,
	}
}

func (r *fakeReferenceRepo) ListManufacturers(_ context.Context) ([]types.Manufacturer, error) {
	out := make([]types.Manufacturer, 0, len(r.manufacturers))
	for _, m := range r.manufacturers {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeReferenceRepo) GetManufacturer(_ context.Context, id int) (types.Manufacturer, error) {
	m, ok := r.manufacturers[id]
	if !ok {
		return types.Manufacturer{}, store.ErrNotFound
	}
	return m, nil
}

func (r *fakeReferenceRepo) CreateManufacturer(_ context.Context, m types.Manufacturer) (types.Manufacturer, error) {
	m.ID = r.nextID
	r.nextID++
	r.manufacturers[m.ID] = m
	return m, nil
}

func (r *fakeReferenceRepo) ListTags(_ context.Context) ([]types.Tag, error) {
	out := make([]types.Tag, 0, len(r.tags))
	for _, tag := range r.tags {
		out = append(out, tag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeReferenceRepo) GetTagsByName(_ context.Context, names []string) ([]types.Tag, error) {
	out := make([]types.Tag, 0, len(names))
	for _, name := range names {
		if tag, ok := r.tags[name]; ok {
			out = append(out, tag)
		}
	}
	return out, nil
}

func (r *fakeReferenceRepo) CreateTag(_ context.Context, tag types.Tag) (types.Tag, error) {
	if _, ok := r.tags[tag.Name]; ok {
		return types.Tag{}, store.ErrDuplicate
	}
	tag.ID = r.nextID
	r.nextID++
	r.tags[tag.Name] = tag
	return tag, nil
}

type likeKey struct {
	userID    int
	listingID int
}

type fakeLikeRepo struct {
	likes map[likeKey]struct{}
}

func newFakeLikeRepo() *fakeLikeRepo {
	return &fakeLikeRepo{likes: make(map[likeKey]struct{})}
}

func (r *fakeLikeRepo) Toggle(_ context.Context, userID, listingID int) (bool, error) {
	key := likeKey{userID: userID, listingID: listingID}
	if _, ok := r.likes[key]; ok {
		delete(r.likes, key)
		return false, nil
	}
	r.likes[key] = struct{}{}
	return true, nil
}

func (r *fakeLikeRepo) Count(_ context.Context, listingID int) (int, error) {
	count := 0
	for key := range r.likes {
		if key.listingID == listingID {
			count++
		}
	}
	return count, nil
}

func (r *fakeLikeRepo) HasLiked(_ context.Context, userID, listingID int) (bool, error) {
	_, ok := r.likes[likeKey{userID: userID, listingID: listingID}]
	return ok, nil
}

type fakeCommentRepo struct {
	nextID   int64
	comments []types.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{nextID: 1}
}

func (r *fakeCommentRepo) Create(_ context.Context, comment types.Comment) (types.Comment, error) {
	comment.ID = r.nextID
	r.nextID++
	comment.CreatedAt = time.Now()
	r.comments = append(r.comments, comment)
	return comment, nil
}

func (r *fakeCommentRepo) ListForListing(_ context.Context, listingID int) ([]types.Comment, error) {
	out := make([]types.Comment, 0)
	for _, comment := range r.comments {
		if comment.ListingID == listingID {
			out = append(out, comment)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	nextID int
	users  map[int]types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[int]types.User)}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (types.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	for _, existing := range r.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return types.User{}, store.ErrDuplicate
		}
	}
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id int, passwordHash string) error {
	user, ok := r.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.PasswordHash = passwordHash
	r.users[id] = user
	return nil
}

type fakeTokenRepo struct {
	tokens map[string]types.PasswordResetToken
	users  *fakeUserRepo
}

func newFakeTokenRepo(users *fakeUserRepo) *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]types.PasswordResetToken), users: users}
}

func (r *fakeTokenRepo) Create(_ context.Context, token types.PasswordResetToken) error {
	r.tokens[token.Token] = token
	return nil
}

func (r *fakeTokenRepo) Redeem(ctx context.Context, token string, window time.Duration, passwordHash string) (int, error) {
	stored, ok := r.tokens[token]
	if !ok || stored.Consumed || time.Since(stored.IssuedAt) > window {
		return 0, store.ErrNotFound
	}
	stored.Consumed = true
	r.tokens[token] = stored
	if err := r.users.UpdatePassword(ctx, stored.UserID, passwordHash); err != nil {
		return 0, err
	}
	return stored.UserID, nil
}

type fakeNotifier struct {
	emails []string
	tokens []string
}

func (n *fakeNotifier) SendPasswordReset(_ context.Context, email, token string) error {
	n.emails = append(n.emails, email)
	n.tokens = append(n.tokens, token)
	return nil
}
