package uploads

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Minimal valid 1x1 PNG.
var pngBytes = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4,
	0x89, 0x00, 0x00, 0x00, 0x0D, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9C, 0x62, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE,
	0x42, 0x60, 0x82,
}

func newTestService(t *testing.T, maxSizeMB int) *Service {
	t.Helper()
	svc, err := NewService(afero.NewMemMapFs(), "uploads", maxSizeMB)
	require.NoError(t, err)
	return svc
}

func TestSaveAndOpenPNG(t *testing.T) {
	svc := newTestService(t, 0)

	upload, err := svc.Save("cover art", bytes.NewReader(pngBytes))
	require.NoError(t, err)

	assert.Equal(t, "image/png", upload.ContentType)
	assert.Equal(t, int64(len(pngBytes)), upload.Size)
	assert.True(t, strings.HasSuffix(upload.Name, ".png"), "name %q should carry the sniffed extension", upload.Name)

	f, err := svc.Open(upload.Name)
	require.NoError(t, err)
	defer f.Close()

	stored, err := afero.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored)
}

func TestSaveRejectsUnsupportedType(t *testing.T) {
	svc := newTestService(t, 0)

	_, err := svc.Save("", strings.NewReader("plain text, not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestSaveRejectsEmptyFile(t *testing.T) {
	svc := newTestService(t, 0)

	_, err := svc.Save("", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrFileRequired)
}

func TestSaveEnforcesSizeLimit(t *testing.T) {
	svc := newTestService(t, 1)

	big := make([]byte, 1024*1024+1)
	copy(big, pngBytes)

	_, err := svc.Save("", bytes.NewReader(big))
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestOpenRejectsPathTraversal(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "secret.txt", []byte("secret"), 0o644))

	svc, err := NewService(fs, "uploads", 0)
	require.NoError(t, err)

	_, err = svc.Open("../secret.txt")
	assert.ErrorIs(t, err, ErrUploadNotFound)
}

func TestNewServiceRequiresDirectory(t *testing.T) {
	_, err := NewService(afero.NewMemMapFs(), " ", 0)
	assert.ErrorIs(t, err, ErrStorageDirRequired)
}
