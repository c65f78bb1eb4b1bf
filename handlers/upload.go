package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"

	"shelflog/models"
	uploadspkg "shelflog/services/uploads"
)

type uploadStore interface {
	Save(title string, r io.Reader) (models.Upload, error)
	Open(name string) (afero.File, error)
	MaxBytes() int64
}

var _ uploadStore = (*uploadspkg.Service)(nil)

type UploadHandler struct {
	Service uploadStore
}

func NewUploadHandler(service uploadStore) *UploadHandler {
	return &UploadHandler{Service: service}
}

// Upload handles POST /api/upload: multipart form with "file" and an
// optional "title".
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.Service.MaxBytes()+1024*1024)

	if err := r.ParseMultipartForm(h.Service.MaxBytes()); err != nil {
		writeUploadError(w, uploadspkg.ErrFileTooLarge)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeUploadError(w, uploadspkg.ErrFileRequired)
		return
	}
	defer file.Close()

	upload, err := h.Service.Save(r.FormValue("title"), file)
	if err != nil {
		writeUploadError(w, err)
		return
	}

	upload.URL = "/api/uploads/" + upload.Name

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(upload)
}

// Serve handles GET /api/uploads/{name}.
func (h *UploadHandler) Serve(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	f, err := h.Service.Open(name)
	if err != nil {
		writeUploadError(w, err)
		return
	}
	defer f.Close()

	modTime := time.Time{}
	if info, err := f.Stat(); err == nil {
		modTime = info.ModTime()
	}

	http.ServeContent(w, r, name, modTime, f)
}

func (h *UploadHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func writeUploadError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, uploadspkg.ErrFileRequired):
		status = http.StatusBadRequest
	case errors.Is(err, uploadspkg.ErrFileTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, uploadspkg.ErrUnsupportedType):
		status = http.StatusUnsupportedMediaType
	case errors.Is(err, uploadspkg.ErrUploadNotFound):
		status = http.StatusNotFound
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
