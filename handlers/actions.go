package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"shelflog/models"
	actionspkg "shelflog/services/actions"
)

type actionExecutor interface {
	Execute(userID string, batch []models.MediaAction) (models.ExecuteActionsResponse, error)
}

var _ actionExecutor = (*actionspkg.Service)(nil)

type ActionsHandler struct {
	Service  actionExecutor
	Resolver actionspkg.Resolver
}

func NewActionsHandler(service actionExecutor, resolver actionspkg.Resolver) *ActionsHandler {
	return &ActionsHandler{Service: service, Resolver: resolver}
}

type executeActionsRequest struct {
	UserID  string               `json:"userId"`
	Actions []models.MediaAction `json:"actions"`
	Enrich  bool                 `json:"enrich"`
}

// Execute handles POST /api/execute-actions. Per-action failures ride inside
// a 200 response; only a malformed batch is a 400.
func (h *ActionsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req executeActionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid request body"})
		return
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = models.DefaultUserID
	}

	batch := req.Actions
	if req.Enrich && h.Resolver != nil {
		batch = actionspkg.EnrichCreateActions(r.Context(), h.Resolver, batch)
	}

	resp, err := h.Service.Execute(userID, batch)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, actionspkg.ErrNoActions) {
			status = http.StatusBadRequest
		} else {
			log.Printf("[actions] execute failed for user %s: %v", userID, err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *ActionsHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
