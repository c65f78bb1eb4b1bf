package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"shelflog/models"
	metadatapkg "shelflog/services/metadata"
)

type metadataResolver interface {
	Resolve(context.Context, models.MetadataQuery) (models.NormalizedMetadata, error)
}

var _ metadataResolver = (*metadatapkg.Service)(nil)

type MetadataHandler struct {
	Service metadataResolver
}

func NewMetadataHandler(s metadataResolver) *MetadataHandler {
	return &MetadataHandler{Service: s}
}

// Resolve handles GET /api/metadata.
func (h *MetadataHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := models.MetadataQuery{
		Title:      strings.TrimSpace(q.Get("title")),
		Identifier: strings.TrimSpace(q.Get("identifier")),
		Medium:     models.ParseMedium(q.Get("medium")),
		Kind:       strings.ToLower(strings.TrimSpace(q.Get("type"))),
		Year:       strings.TrimSpace(q.Get("year")),
		Season:     strings.TrimSpace(q.Get("season")),
	}

	meta, err := h.Service.Resolve(r.Context(), query)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, metadatapkg.ErrMissingInput):
			status = http.StatusBadRequest
		case errors.Is(err, metadatapkg.ErrNotFound):
			status = http.StatusNotFound
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(meta)
}

func (h *MetadataHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
