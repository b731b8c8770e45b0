package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Swevix/WebRGZ/internal/services"
	"github.com/Swevix/WebRGZ/internal/store"
	"github.com/Swevix/WebRGZ/types"
)

const (
	adminRole     = "admin"
	adminPageSize = 5
)

var (
	errInvalidStatus      = errors.New("invalid status filter")
	errInvalidPriceFilter = errors.New("invalid price filter")
	errInvalidPage        = errors.New("invalid page")
	errInvalidLimit       = errors.New("invalid limit")
)

// AdminHandler provides the administrative listing index, bulk status
// transitions and reference-data management.
type AdminHandler struct {
	userService      *services.UserService
	listingService   *services.ListingService
	referenceService *services.ReferenceService
}

func NewAdminHandler(
	userService *services.UserService,
	listingService *services.ListingService,
	referenceService *services.ReferenceService,
) *AdminHandler {
	return &AdminHandler{
		userService:      userService,
		listingService:   listingService,
		referenceService: referenceService,
	}
}

// AdminRouter registers admin routes on the given router. Every route
// requires an authenticated user with the admin role.
func AdminRouter(
	r chi.Router,
	userService *services.UserService,
	listingService *services.ListingService,
	referenceService *services.ReferenceService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewAdminHandler(userService, listingService, referenceService)

	r.Use(authMiddleware)
	r.Use(handler.RequireAdmin)
	r.Get("/listings", handler.ListListings)
	r.Post("/listings/publish", handler.PublishListings)
	r.Post("/listings/unpublish", handler.UnpublishListings)
	r.Post("/manufacturers", handler.CreateManufacturer)
	r.Post("/tags", handler.CreateTag)
}

// RequireAdmin rejects requests whose subject does not hold the admin
// role. Must run after the auth middleware.
func (h *AdminHandler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromContext(r.Context())
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		user, err := h.userService.GetByID(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if user.Role != adminRole {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// BulkStatusRequest names the listings a bulk transition applies to.
type BulkStatusRequest struct {
	IDs []int `json:"ids"`
}

// ListListings serves the admin index over all statuses, with optional
// status, text and price filters.
func (h *AdminHandler) ListListings(w http.ResponseWriter, r *http.Request) {
	filter, page, err := parseAdminFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.listingService.ListAdmin(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list listings")
		return
	}

	writeJSON(w, http.StatusOK, ListingListResponse{
		Items: items,
		Page:  page,
		Limit: filter.Limit,
		Total: total,
	})
}

func (h *AdminHandler) PublishListings(w http.ResponseWriter, r *http.Request) {
	h.bulkStatus(w, r, h.listingService.Publish)
}

func (h *AdminHandler) UnpublishListings(w http.ResponseWriter, r *http.Request) {
	h.bulkStatus(w, r, h.listingService.Unpublish)
}

func (h *AdminHandler) bulkStatus(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, ids []int) (services.BulkResult, error),
) {
	var req BulkStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	result, err := apply(r.Context(), req.IDs)
	if err != nil {
		writeServiceError(w, err, "failed to update listings")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AdminHandler) CreateManufacturer(w http.ResponseWriter, r *http.Request) {
	var req ManufacturerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	manufacturer, err := h.referenceService.CreateManufacturer(r.Context(), req.Name, req.Country)
	if err != nil {
		writeServiceError(w, err, "failed to create manufacturer")
		return
	}
	writeJSON(w, http.StatusCreated, manufacturer)
}

func (h *AdminHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	tag, err := h.referenceService.CreateTag(r.Context(), req.Name)
	if err != nil {
		writeServiceError(w, err, "failed to create tag")
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

type ManufacturerRequest struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

type TagRequest struct {
	Name string `json:"name"`
}

func parseAdminFilter(r *http.Request) (store.ListingFilter, int, error) {
	query := r.URL.Query()

	filter := store.ListingFilter{
		Query: strings.TrimSpace(query.Get("q")),
		Limit: adminPageSize,
	}

	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status, err := parseStatus(raw)
		if err != nil {
			return store.ListingFilter{}, 0, err
		}
		filter.Status = &status
	}

	if raw := strings.TrimSpace(query.Get("price_min")); raw != "" {
		price, err := types.ParsePrice(raw)
		if err != nil {
			return store.ListingFilter{}, 0, errInvalidPriceFilter
		}
		filter.PriceMin = &price
	}
	if raw := strings.TrimSpace(query.Get("price_max")); raw != "" {
		price, err := types.ParsePrice(raw)
		if err != nil {
			return store.ListingFilter{}, 0, errInvalidPriceFilter
		}
		filter.PriceMax = &price
	}

	page := 1
	if raw := strings.TrimSpace(query.Get("page")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxPage {
			return store.ListingFilter{}, 0, errInvalidPage
		}
		page = parsed
	}
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return store.ListingFilter{}, 0, errInvalidLimit
		}
		filter.Limit = parsed
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	filter.Offset = (page - 1) * filter.Limit

	return filter, page, nil
}

func parseStatus(raw string) (types.ListingStatus, error) {
	switch strings.ToLower(raw) {
	case "draft":
		return types.StatusDraft, nil
	case "published":
		return types.StatusPublished, nil
	default:
		return 0, errInvalidStatus
	}
}
