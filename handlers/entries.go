package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"shelflog/models"
	entriespkg "shelflog/services/entries"
)

type entryStore interface {
	List(userID string) ([]models.Entry, error)
	Get(userID, id string) (models.Entry, error)
	Create(userID string, fields map[string]any) (models.Entry, error)
	Update(userID, id string, fields map[string]any) (models.Entry, error)
	Delete(userID, id string) error
}

var _ entryStore = (*entriespkg.Service)(nil)

type EntriesHandler struct {
	Service entryStore
}

func NewEntriesHandler(service entryStore) *EntriesHandler {
	return &EntriesHandler{Service: service}
}

func entriesUserID(r *http.Request) string {
	userID := strings.TrimSpace(mux.Vars(r)["userID"])
	if userID == "" {
		userID = models.DefaultUserID
	}
	return userID
}

func entriesStatus(err error) int {
	switch {
	case errors.Is(err, entriespkg.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, entriespkg.ErrUserIDRequired),
		errors.Is(err, entriespkg.ErrTitleRequired),
		errors.Is(err, entriespkg.ErrNoFields):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// List handles GET /api/users/{userID}/entries.
func (h *EntriesHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(entriesUserID(r))
	if err != nil {
		writeEntriesError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

// Get handles GET /api/users/{userID}/entries/{id}.
func (h *EntriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.Service.Get(entriesUserID(r), mux.Vars(r)["id"])
	if err != nil {
		writeEntriesError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entry)
}

// Create handles POST /api/users/{userID}/entries.
func (h *EntriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid request body"})
		return
	}

	entry, err := h.Service.Create(entriesUserID(r), fields)
	if err != nil {
		writeEntriesError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entry)
}

// Update handles PATCH /api/users/{userID}/entries/{id}.
func (h *EntriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid request body"})
		return
	}

	entry, err := h.Service.Update(entriesUserID(r), mux.Vars(r)["id"], fields)
	if err != nil {
		writeEntriesError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entry)
}

// Delete handles DELETE /api/users/{userID}/entries/{id}.
func (h *EntriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(entriesUserID(r), mux.Vars(r)["id"]); err != nil {
		writeEntriesError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *EntriesHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func writeEntriesError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(entriesStatus(err))
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
