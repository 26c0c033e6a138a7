package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxDocumentSize caps uploaded verification documents at 10MB.
const MaxDocumentSize = 10 << 20

// documentExtensions maps the allowed MIME types to the extension the stored
// file gets. Anything else is rejected.
var documentExtensions = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
}

var (
	ErrUnsupportedDocumentType = errors.New("unsupported document type")
	ErrDocumentTooLarge        = errors.New("document exceeds the 10MB limit")
	ErrUnsafeFilename          = errors.New("unsafe document filename")
)

// DocumentStore writes verification documents to a local uploads directory
// under randomized names. The root is fixed at construction so no handler
// ever resolves paths against ambient state.
type DocumentStore struct {
	root string
}

// NewDocumentStore creates the uploads directory if needed and returns a
// store rooted there.
func NewDocumentStore(dir string) (*DocumentStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &DocumentStore{root: abs}, nil
}

// AllowedDocumentType reports whether contentType is an accepted upload type.
func AllowedDocumentType(contentType string) bool {
	_, ok := documentExtensions[normalizeContentType(contentType)]
	return ok
}

// Save writes the uploaded file under a random generated name (never the
// client's original name) and returns the stored filename.
func (s *DocumentStore) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	if header.Size > MaxDocumentSize {
		return "", ErrDocumentTooLarge
	}
	ext, ok := documentExtensions[normalizeContentType(header.Header.Get("Content-Type"))]
	if !ok {
		return "", ErrUnsupportedDocumentType
	}

	filename := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(s.root, filename))
	if err != nil {
		return "", fmt.Errorf("failed to create document file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(file, MaxDocumentSize+1)); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write document file: %w", err)
	}
	return filename, nil
}

// Resolve turns a stored filename into an absolute path under the uploads
// root. Filenames carrying separators or traversal segments are rejected
// before any filesystem access, as is any resolution escaping the root.
func (s *DocumentStore) Resolve(filename string) (string, error) {
	if filename == "" ||
		strings.ContainsAny(filename, "/\\") ||
		strings.Contains(filename, "..") {
		return "", ErrUnsafeFilename
	}
	path := filepath.Join(s.root, filename)
	if !strings.HasPrefix(path, s.root+string(filepath.Separator)) {
		return "", ErrUnsafeFilename
	}
	return path, nil
}

// Remove deletes a stored document. Missing files are not an error.
func (s *DocumentStore) Remove(filename string) error {
	path, err := s.Resolve(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func normalizeContentType(ct string) string {
	if idx := strings.Index(ct, ";"); idx != -1 {
		ct = ct[:idx]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
