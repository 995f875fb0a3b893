package upload

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is the magic-number prefix http.DetectContentType recognizes
// as image/png.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func multipartUpload(t *testing.T, filename string, content []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))

	file, header, err := req.FormFile("file")
	require.NoError(t, err)
	t.Cleanup(func() { file.Close() })
	return file, header
}

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	storage, err := NewStorage(t.TempDir(), "http://localhost:8080/uploads")
	require.NoError(t, err)
	return storage
}

func TestSave_AcceptsPNG(t *testing.T) {
	// Arrange
	storage := newTestStorage(t)
	file, header := multipartUpload(t, "avatar.png", pngHeader)

	// Act
	url, err := storage.Save(file, header)

	// Assert
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".png"))
	// The client filename never appears in the stored name
	assert.NotContains(t, url, "avatar")

	stored := filepath.Join(storage.Dir(), filepath.Base(url))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
}

func TestSave_RejectsNonImage(t *testing.T) {
	// Arrange
	storage := newTestStorage(t)
	file, header := multipartUpload(t, "script.php", []byte("<?php echo 'hi'; ?>"))

	// Act
	url, err := storage.Save(file, header)

	// Assert
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.Empty(t, url)

	// Nothing reached the disk
	entries, readErr := os.ReadDir(storage.Dir())
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestSave_RejectsSpoofedExtension(t *testing.T) {
	// Arrange: a text payload named like an image. The sniffer decides,
	// not the filename.
	storage := newTestStorage(t)
	file, header := multipartUpload(t, "notreally.png", []byte("plain text pretending"))

	// Act
	_, err := storage.Save(file, header)

	// Assert
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestSave_RejectsOversize(t *testing.T) {
	// Arrange
	storage := newTestStorage(t)
	big := make([]byte, MaxFileSize+1)
	copy(big, pngHeader)
	file, header := multipartUpload(t, "huge.png", big)

	// Act
	url, err := storage.Save(file, header)

	// Assert
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Empty(t, url)
}

func TestSave_NilHeader(t *testing.T) {
	// Arrange
	storage := newTestStorage(t)

	// Act
	_, err := storage.Save(nil, nil)

	// Assert
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestSave_UniqueNames(t *testing.T) {
	// Arrange
	storage := newTestStorage(t)

	// Act: the same file twice never collides
	file1, header1 := multipartUpload(t, "a.png", pngHeader)
	url1, err1 := storage.Save(file1, header1)
	file2, header2 := multipartUpload(t, "a.png", pngHeader)
	url2, err2 := storage.Save(file2, header2)

	// Assert
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.NotEqual(t, url1, url2)
}
