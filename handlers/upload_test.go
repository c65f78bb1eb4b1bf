package handlers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"

	"shelflog/handlers"
	"shelflog/models"
	"shelflog/services/uploads"
)

// Minimal valid GIF header plus trailer.
var gifBytes = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\x00\x00\x00\xff\xff\xff\x21\xf9\x04\x00\x00\x00\x00\x00\x2c\x00\x00\x00\x00\x01\x00\x01\x00\x00\x02\x02\x44\x01\x00\x3b")

func newUploadHandler(t *testing.T) *handlers.UploadHandler {
	t.Helper()
	svc, err := uploads.NewService(afero.NewMemMapFs(), "uploads", 1)
	if err != nil {
		t.Fatalf("failed to create uploads service: %v", err)
	}
	return handlers.NewUploadHandler(svc)
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := mw.WriteField("title", "cover"); err != nil {
		t.Fatalf("failed to write title field: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestUploadAndServe(t *testing.T) {
	h := newUploadHandler(t)

	body, contentType := multipartBody(t, "file", "pic.gif", gifBytes)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var upload models.Upload
	if err := json.NewDecoder(rec.Body).Decode(&upload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if upload.ContentType != "image/gif" {
		t.Fatalf("expected image/gif, got %q", upload.ContentType)
	}
	if !strings.HasPrefix(upload.URL, "/api/uploads/") {
		t.Fatalf("expected public URL under /api/uploads/, got %q", upload.URL)
	}

	reqServe := httptest.NewRequest(http.MethodGet, upload.URL, nil)
	reqServe = mux.SetURLVars(reqServe, map[string]string{"name": upload.Name})
	recServe := httptest.NewRecorder()
	h.Serve(recServe, reqServe)

	if recServe.Code != http.StatusOK {
		t.Fatalf("expected status 200 serving upload, got %d", recServe.Code)
	}
	if !bytes.Equal(recServe.Body.Bytes(), gifBytes) {
		t.Fatalf("served bytes differ from uploaded bytes")
	}
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	h := newUploadHandler(t)

	body, contentType := multipartBody(t, "file", "notes.txt", []byte("just some text content"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected status 415, got %d", rec.Code)
	}
}

func TestUploadRequiresFile(t *testing.T) {
	h := newUploadHandler(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("title", "no file"); err != nil {
		t.Fatalf("failed to write field: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestServeUnknownUpload(t *testing.T) {
	h := newUploadHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/uploads/missing.png", nil)
	req = mux.SetURLVars(req, map[string]string{"name": "missing.png"})
	rec := httptest.NewRecorder()
	h.Serve(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}
