package catalog

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/user/storefront-go/apperror"
)

// MaxImageBytes caps a single product image upload.
const MaxImageBytes = 5 << 20

// imageExtensions maps the sniffed content types we accept to file extensions.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageUpload is an uploaded file held in memory.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// contentType sniffs the upload rather than trusting the client's header.
func (u ImageUpload) contentType() (string, string, error) {
	ct := http.DetectContentType(u.Data)
	ext, ok := imageExtensions[ct]
	if !ok {
		return "", "", apperror.NewValidationError(fmt.Sprintf("Unsupported image type %q.", ct), nil)
	}
	return ct, ext, nil
}

// ImageStore saves product images and returns the URL they are served from.
// Remove ignores the placeholder and URLs the store did not produce.
type ImageStore interface {
	Save(ctx context.Context, img ImageUpload) (string, error)
	Remove(ctx context.Context, url string) error
}

func newImageName(ext string) string {
	return "image-" + uuid.NewString() + ext
}

// LocalImageStore writes images into a directory served at /uploads.
type LocalImageStore struct {
	dir       string
	urlPrefix string
}

// NewLocalImageStore creates dir if needed.
func NewLocalImageStore(dir string) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &LocalImageStore{dir: dir, urlPrefix: "/uploads/"}, nil
}

func (s *LocalImageStore) Save(_ context.Context, img ImageUpload) (string, error) {
	_, ext, err := img.contentType()
	if err != nil {
		return "", err
	}
	name := newImageName(ext)
	if err := os.WriteFile(filepath.Join(s.dir, name), img.Data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return s.urlPrefix + name, nil
}

func (s *LocalImageStore) Remove(_ context.Context, url string) error {
	if url == PlaceholderImage || !strings.HasPrefix(url, s.urlPrefix) {
		return nil
	}
	// Base strips any path components smuggled into the URL.
	name := filepath.Base(strings.TrimPrefix(url, s.urlPrefix))
	if name == "." || name == string(filepath.Separator) {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}
