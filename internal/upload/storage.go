package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"linkhub/internal/metrics"

	"github.com/google/uuid"
)

// MaxFileSize is the upload ceiling: 5 MiB.
const MaxFileSize = 5 * 1024 * 1024

// allowedTypes is the image MIME allow-list. The type is sniffed from the
// file content, not trusted from the client header.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Each rejection reason is a distinct error so the handler can report them apart.
var (
	ErrNoFile          = errors.New("no file uploaded")
	ErrUnsupportedType = errors.New("invalid file type: only jpeg, png, gif and webp images are accepted")
	ErrTooLarge        = errors.New("file too large: limit is 5MB")
)

// Storage stores uploaded profile and link images on local disk under a
// uniquely-named path and hands back the public URL.
type Storage struct {
	dir     string // Filesystem directory for stored files
	baseURL string // Public prefix the directory is served under
}

// NewStorage creates the upload directory if needed and returns the store.
func NewStorage(dir, baseURL string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Storage{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Save validates and stores one uploaded file, returning its public URL.
// Validation order: size ceiling first, then content sniffing against the
// image allow-list.
func (s *Storage) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	if header == nil {
		return "", ErrNoFile
	}
	if header.Size > MaxFileSize {
		metrics.RecordUploadRejected("size")
		return "", ErrTooLarge
	}

	// Sniff the real content type from the leading bytes
	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	contentType := http.DetectContentType(head[:n])

	ext, ok := allowedTypes[contentType]
	if !ok {
		metrics.RecordUploadRejected("type")
		return "", ErrUnsupportedType
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind upload: %w", err)
	}

	// Unique name: the client filename never touches the filesystem
	filename := uuid.New().String() + ext
	path := filepath.Join(s.dir, filename)

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		metrics.RecordUploadRejected("write")
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
	defer dst.Close()

	// Copy with a hard cap - the header size is client-supplied
	written, err := io.Copy(dst, io.LimitReader(file, MaxFileSize+1))
	if err != nil {
		os.Remove(path)
		metrics.RecordUploadRejected("write")
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
	if written > MaxFileSize {
		os.Remove(path)
		metrics.RecordUploadRejected("size")
		return "", ErrTooLarge
	}

	metrics.RecordUpload()
	return fmt.Sprintf("%s/%s", s.baseURL, filename), nil
}

// Dir returns the filesystem directory files are stored under, for serving.
func (s *Storage) Dir() string {
	return s.dir
}
