package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Swevix/WebRGZ/internal/services"
)

// ReferenceHandler serves public reference data.
type ReferenceHandler struct {
	referenceService *services.ReferenceService
}

func NewReferenceHandler(referenceService *services.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{referenceService: referenceService}
}

// ReferenceRouter registers the public reference-data routes.
func ReferenceRouter(r chi.Router, referenceService *services.ReferenceService) {
	handler := NewReferenceHandler(referenceService)

	r.Get("/manufacturers", handler.ListManufacturers)
	r.Get("/tags", handler.ListTags)
}

func (h *ReferenceHandler) ListManufacturers(w http.ResponseWriter, r *http.Request) {
	manufacturers, err := h.referenceService.ListManufacturers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list manufacturers")
		return
	}
	writeJSON(w, http.StatusOK, manufacturers)
}

func (h *ReferenceHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.referenceService.ListTags(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tags")
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// Healthz reports process liveness.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
