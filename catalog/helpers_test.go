package catalog

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// pngHeader is enough for http.DetectContentType to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeImageStore records saves and removals.
type fakeImageStore struct {
	mu      sync.Mutex
	saved   []string
	removed []string
	saveErr error
}

func (f *fakeImageStore) Save(_ context.Context, img ImageUpload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return "", f.saveErr
	}
	url := "/uploads/" + img.Filename
	f.saved = append(f.saved, url)
	return url, nil
}

func (f *fakeImageStore) Remove(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, url)
	return nil
}
