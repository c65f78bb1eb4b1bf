package uploads

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	"shelflog/models"
)

var (
	ErrStorageDirRequired = errors.New("storage directory not provided")
	ErrFileRequired       = errors.New("file is required")
	ErrFileTooLarge       = errors.New("file exceeds the size limit")
	ErrUnsupportedType    = errors.New("unsupported file type")
	ErrUploadNotFound     = errors.New("upload not found")
)

// DefaultMaxSizeMB caps uploads when the settings file does not say otherwise.
const DefaultMaxSizeMB = 10

var allowedTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/svg+xml",
}

// Service stores uploaded images on a filesystem under random names. The
// filesystem is injected so tests run against memory.
type Service struct {
	fs       afero.Fs
	dir      string
	maxBytes int64
}

// NewService creates an upload store rooted at dir. maxSizeMB <= 0 falls back
// to the default ceiling.
func NewService(fs afero.Fs, dir string, maxSizeMB int) (*Service, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, ErrStorageDirRequired
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if maxSizeMB <= 0 {
		maxSizeMB = DefaultMaxSizeMB
	}

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}

	return &Service{
		fs:       fs,
		dir:      dir,
		maxBytes: int64(maxSizeMB) * 1024 * 1024,
	}, nil
}

// MaxBytes reports the configured upload ceiling.
func (s *Service) MaxBytes() int64 {
	return s.maxBytes
}

// Save sniffs the content type, enforces the allow-list and size ceiling, and
// writes the file under a random name. title is informational only and lands
// in the log line.
func (s *Service) Save(title string, r io.Reader) (models.Upload, error) {
	if r == nil {
		return models.Upload{}, ErrFileRequired
	}

	// Read one byte past the limit so oversize input is detectable.
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return models.Upload{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return models.Upload{}, ErrFileRequired
	}
	if int64(len(data)) > s.maxBytes {
		return models.Upload{}, ErrFileTooLarge
	}

	mtype := mimetype.Detect(data)
	if !isAllowed(mtype) {
		return models.Upload{}, fmt.Errorf("%w: %s", ErrUnsupportedType, mtype.String())
	}

	name := uuid.NewString() + mtype.Extension()
	path := filepath.Join(s.dir, name)

	if err := afero.WriteReader(s.fs, path, bytes.NewReader(data)); err != nil {
		return models.Upload{}, fmt.Errorf("write upload: %w", err)
	}

	upload := models.Upload{
		Name:        name,
		Size:        int64(len(data)),
		ContentType: mtype.String(),
	}

	if title = strings.TrimSpace(title); title != "" {
		log.Printf("[uploads] stored %q as %s (%d bytes)", title, name, upload.Size)
	} else {
		log.Printf("[uploads] stored %s (%d bytes)", name, upload.Size)
	}

	return upload, nil
}

// Open returns the stored file for serving. The name is reduced to its base
// so path traversal cannot escape the uploads directory.
func (s *Service) Open(name string) (afero.File, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, ErrUploadNotFound
	}

	f, err := s.fs.Open(filepath.Join(s.dir, name))
	if err != nil {
		return nil, ErrUploadNotFound
	}
	return f, nil
}

func isAllowed(mtype *mimetype.MIME) bool {
	for _, allowed := range allowedTypes {
		if mtype.Is(allowed) {
			return true
		}
	}
	return false
}
