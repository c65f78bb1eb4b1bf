package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"shelflog/models"
	userspkg "shelflog/services/users"
)

type userService interface {
	Register(name, email string) (models.User, error)
	List(status models.UserStatus) ([]models.User, error)
	Approve(id string) (models.User, error)
	Reject(id string) (models.User, error)
}

var _ userService = (*userspkg.Service)(nil)

type UsersHandler struct {
	Service userService
}

func NewUsersHandler(service userService) *UsersHandler {
	return &UsersHandler{Service: service}
}

type registerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Register handles POST /api/users/register. New accounts start out pending
// until an admin approves them.
func (h *UsersHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid request body"})
		return
	}

	user, err := h.Service.Register(req.Name, req.Email)
	if err != nil {
		writeUsersError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

// List handles GET /api/admin/users with an optional status filter.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	status := models.UserStatus(r.URL.Query().Get("status"))

	users, err := h.Service.List(status)
	if err != nil {
		writeUsersError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(users)
}

// Approve handles POST /api/admin/users/{id}/approve.
func (h *UsersHandler) Approve(w http.ResponseWriter, r *http.Request) {
	user, err := h.Service.Approve(mux.Vars(r)["id"])
	if err != nil {
		writeUsersError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// Reject handles POST /api/admin/users/{id}/reject.
func (h *UsersHandler) Reject(w http.ResponseWriter, r *http.Request) {
	user, err := h.Service.Reject(mux.Vars(r)["id"])
	if err != nil {
		writeUsersError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

func (h *UsersHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func writeUsersError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, userspkg.ErrNameRequired),
		errors.Is(err, userspkg.ErrEmailRequired):
		status = http.StatusBadRequest
	case errors.Is(err, userspkg.ErrEmailTaken):
		status = http.StatusConflict
	case errors.Is(err, userspkg.ErrUserNotFound):
		status = http.StatusNotFound
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
