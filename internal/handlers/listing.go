package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Swevix/WebRGZ/internal/services"
	"github.com/Swevix/WebRGZ/types"
)

const (
	defaultPageSize    = 10
	maxPageSize        = 100
	maxPage            = 1_000_000
	maxMultipartMemory = 32 << 20
	maxImageBytes      = 16 << 20

	formFieldTitle        = "title"
	formFieldDesc         = "description"
	formFieldPrice        = "price"
	formFieldManufacturer = "manufacturer_id"
	formFieldTags         = "tags"
	formFieldImage        = "image"
)

// ListingHandler provides HTTP handlers for listings, likes and
// comments.
type ListingHandler struct {
	listingService *services.ListingService
	likeService    *services.LikeService
	commentService *services.CommentService
}

func NewListingHandler(
	listingService *services.ListingService,
	likeService *services.LikeService,
	commentService *services.CommentService,
) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
		likeService:    likeService,
		commentService: commentService,
	}
}

// ListingRouter registers listing routes on the given router.
func ListingRouter(
	r chi.Router,
	listingService *services.ListingService,
	likeService *services.LikeService,
	commentService *services.CommentService,
	authMiddleware func(http.Handler) http.Handler,
	optionalAuthMiddleware func(http.Handler) http.Handler,
) {
	handler := NewListingHandler(listingService, likeService, commentService)

	r.Get("/", handler.ListListings)
	r.With(authMiddleware).Post("/", handler.CreateListing)
	r.Route("/{slug}", func(r chi.Router) {
		r.With(optionalAuthMiddleware).Get("/", handler.GetListing)
		r.With(optionalAuthMiddleware).Get("/image", handler.GetListingImage)
		r.With(optionalAuthMiddleware).Get("/comments", handler.ListComments)
		r.With(authMiddleware).Put("/", handler.UpdateListing)
		r.With(authMiddleware).Delete("/", handler.DeleteListing)
		r.With(authMiddleware).Post("/like", handler.ToggleLike)
		r.With(authMiddleware).Post("/comments", handler.PostComment)
	})
}

// ListingListResponse is the paginated list response payload.
type ListingListResponse struct {
	Items []types.Listing `json:"items"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
	Total int             `json:"total"`
}

// ListingDetailResponse decorates a listing with its like state and
// comment thread.
type ListingDetailResponse struct {
	types.Listing
	Likes    int             `json:"likes"`
	Liked    bool            `json:"liked"`
	Comments []types.Comment `json:"comments"`
}

// LikeResponse reports the new like state after a toggle.
type LikeResponse struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

func (h *ListingHandler) ListListings(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.listingService.ListPublished(r.Context(), offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list listings")
		return
	}

	writeJSON(w, http.StatusOK, ListingListResponse{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

func (h *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	slug := chi.URLParam(r, "slug")

	listing, err := h.listingService.GetBySlug(r.Context(), actor, slug)
	if err != nil {
		writeServiceError(w, err, "failed to fetch listing")
		return
	}

	likes, err := h.likeService.Count(r.Context(), listing.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch listing")
		return
	}
	liked, err := h.likeService.HasLiked(r.Context(), actor, listing.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch listing")
		return
	}
	comments, err := h.commentService.ListFor(r.Context(), listing.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch listing")
		return
	}

	writeJSON(w, http.StatusOK, ListingDetailResponse{
		Listing:  listing,
		Likes:    likes,
		Liked:    liked,
		Comments: comments,
	})
}

func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	input, err := parseListingForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.listingService.Create(r.Context(), actor, input)
	if err != nil {
		writeServiceError(w, err, "failed to create listing")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *ListingHandler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	slug := chi.URLParam(r, "slug")

	listing, err := h.listingService.GetBySlug(r.Context(), actor, slug)
	if err != nil {
		writeServiceError(w, err, "failed to fetch listing")
		return
	}

	input, err := parseListingForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.listingService.Update(r.Context(), actor, listing.ID, input)
	if err != nil {
		writeServiceError(w, err, "failed to update listing")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *ListingHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	slug := chi.URLParam(r, "slug")

	listing, err := h.listingService.GetBySlug(r.Context(), actor, slug)
	if err != nil {
		writeServiceError(w, err, "failed to fetch listing")
		return
	}

	if err := h.listingService.Delete(r.Context(), actor, listing.ID); err != nil {
		writeServiceError(w, err, "failed to delete listing")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListingHandler) GetListingImage(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	slug := chi.URLParam(r, "slug")

	reader, err := h.listingService.OpenImage(r.Context(), actor, slug)
	if err != nil {
		writeServiceError(w, err, "failed to fetch image")
		return
	}
	defer reader.Close()

	head := make([]byte, 512)
	n, _ := io.ReadFull(reader, head)
	w.Header().Set("Content-Type", http.DetectContentType(head[:n]))
	_, _ = w.Write(head[:n])
	_, _ = io.Copy(w, reader)
}

func (h *ListingHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	slug := chi.URLParam(r, "slug")

	listing, err := h.listingService.GetBySlug(r.Context(), actor, slug)
	if err != nil {
		writeServiceError(w, err, "failed to fetch listing")
		return
	}

	liked, likes, err := h.likeService.Toggle(r.Context(), actor, listing.ID)
	if err != nil {
		writeServiceError(w, err, "failed to toggle like")
		return
	}
	writeJSON(w, http.StatusOK, LikeResponse{Liked: liked, Likes: likes})
}

func (h *ListingHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	slug := chi.URLParam(r, "slug")

	listing, err := h.listingService.GetBySlug(r.Context(), actor, slug)
	if err != nil {
		writeServiceError(w, err, "failed to fetch listing")
		return
	}

	comments, err := h.commentService.ListFor(r.Context(), listing.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list comments")
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (h *ListingHandler) PostComment(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	slug := chi.URLParam(r, "slug")

	listing, err := h.listingService.GetBySlug(r.Context(), actor, slug)
	if err != nil {
		writeServiceError(w, err, "failed to fetch listing")
		return
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	comment, err := h.commentService.Post(r.Context(), actor, listing.ID, req.Text)
	if err != nil {
		writeServiceError(w, err, "failed to post comment")
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// CommentRequest is the comment-post payload.
type CommentRequest struct {
	Text string `json:"text"`
}

func parseListingForm(r *http.Request) (services.ListingInput, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return services.ListingInput{}, errors.New("invalid multipart form")
	}

	title := strings.TrimSpace(r.FormValue(formFieldTitle))
	if title == "" {
		return services.ListingInput{}, errors.New("title is required")
	}

	price, err := types.ParsePrice(r.FormValue(formFieldPrice))
	if err != nil {
		return services.ListingInput{}, errors.New("invalid price")
	}

	manufacturerID, err := parseOptionalInt(r.FormValue(formFieldManufacturer))
	if err != nil || manufacturerID < 0 {
		return services.ListingInput{}, errors.New("invalid manufacturer id")
	}

	image, err := parseImageFile(r.MultipartForm)
	if err != nil {
		return services.ListingInput{}, err
	}

	return services.ListingInput{
		Title:          title,
		Description:    strings.TrimSpace(r.FormValue(formFieldDesc)),
		Price:          price,
		ManufacturerID: manufacturerID,
		Tags:           splitTags(r.FormValue(formFieldTags)),
		Image:          image,
	}, nil
}

func parseOptionalInt(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

func splitTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tag := strings.TrimSpace(part)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func parseImageFile(form *multipart.Form) (*services.ImageUpload, error) {
	if form == nil {
		return nil, nil
	}

	files := form.File[formFieldImage]
	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > 1 {
		return nil, errors.New("only one image is allowed")
	}

	fileHeader := files[0]
	file, err := fileHeader.Open()
	if err != nil {
		return nil, errors.New("failed to read image upload")
	}

	data, err := readFileLimited(file, maxImageBytes)
	_ = file.Close()
	if err != nil {
		return nil, err
	}

	return &services.ImageUpload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	return data, nil
}
