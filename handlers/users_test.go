package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"shelflog/handlers"
	"shelflog/models"
	"shelflog/services/users"
)

func newUsersHandler(t *testing.T) *handlers.UsersHandler {
	t.Helper()
	svc, err := users.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create users service: %v", err)
	}
	return handlers.NewUsersHandler(svc)
}

func TestRegisterAndApprove(t *testing.T) {
	h := newUsersHandler(t)

	payload, _ := json.Marshal(map[string]string{"name": "Alice", "email": "alice@example.com"})
	req := httptest.NewRequest(http.MethodPost, "/api/users/register", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var user models.User
	if err := json.NewDecoder(rec.Body).Decode(&user); err != nil {
		t.Fatalf("failed to decode user: %v", err)
	}
	if user.Status != models.UserStatusPending {
		t.Fatalf("expected pending status, got %q", user.Status)
	}

	reqApprove := httptest.NewRequest(http.MethodPost, "/api/admin/users/"+user.ID+"/approve", nil)
	reqApprove = mux.SetURLVars(reqApprove, map[string]string{"id": user.ID})
	recApprove := httptest.NewRecorder()
	h.Approve(recApprove, reqApprove)

	if recApprove.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recApprove.Code)
	}

	var approved models.User
	if err := json.NewDecoder(recApprove.Body).Decode(&approved); err != nil {
		t.Fatalf("failed to decode approved user: %v", err)
	}
	if approved.Status != models.UserStatusApproved {
		t.Fatalf("expected approved status, got %q", approved.Status)
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	h := newUsersHandler(t)

	payload, _ := json.Marshal(map[string]string{"name": "Alice", "email": "alice@example.com"})
	req := httptest.NewRequest(http.MethodPost, "/api/users/register", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	h.Register(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}

	payload, _ = json.Marshal(map[string]string{"name": "Alice Again", "email": "alice@example.com"})
	req = httptest.NewRequest(http.MethodPost, "/api/users/register", bytes.NewReader(payload))
	rec = httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
}

func TestListUsersFiltersByStatus(t *testing.T) {
	h := newUsersHandler(t)

	for _, email := range []string{"a@example.com", "b@example.com"} {
		payload, _ := json.Marshal(map[string]string{"name": "User", "email": email})
		req := httptest.NewRequest(http.MethodPost, "/api/users/register", bytes.NewReader(payload))
		rec := httptest.NewRecorder()
		h.Register(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d", rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users?status=pending", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var list []models.User
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 pending users, got %d", len(list))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/users?status=approved", nil)
	rec = httptest.NewRecorder()
	h.List(rec, req)

	list = nil
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no approved users, got %d", len(list))
	}
}
