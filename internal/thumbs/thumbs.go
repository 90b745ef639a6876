// Local thumbnail cache. Preview images are resized copies of backend
// originals, cached on disk so repeated gallery loads do not re-fetch
// or re-decode anything.

package thumbs

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/nfnt/resize"
)

const jpegQuality = 75

// Source provides the original image bytes, usually the backend client.
type Source interface {
	RawImage(ctx context.Context, path string) (io.ReadCloser, error)
}

// Cache resizes and stores preview images under a cache directory.
type Cache struct {
	dir    string
	source Source

	mu       sync.Mutex
	inflight map[string]*sync.WaitGroup
}

// New creates a Cache rooted at dir, creating the directory if needed.
func New(dir string, source Source) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create thumbnail cache dir: %w", err)
	}
	return &Cache{
		dir:      dir,
		source:   source,
		inflight: make(map[string]*sync.WaitGroup),
	}, nil
}

// cacheKey names the cached file for one image version and width. The
// modification time is part of the name, so an edited image gets a fresh
// thumbnail and the stale one can be swept.
func cacheKey(path string, mtime int64, width int) string {
	return fmt.Sprintf("%x_%d_w%d.jpg", md5.Sum([]byte(path)), mtime, width)
}

// Get returns the resized preview for one image, generating and caching
// it on first use. Concurrent requests for the same preview collapse
// into a single generation.
func (c *Cache) Get(ctx context.Context, path string, mtime int64, width int) ([]byte, error) {
	if width <= 0 {
		return nil, fmt.Errorf("invalid thumbnail width %d", width)
	}
	key := cacheKey(path, mtime, width)
	file := filepath.Join(c.dir, key)

	for {
		if data, err := os.ReadFile(file); err == nil {
			return data, nil
		}

		c.mu.Lock()
		if wg, ok := c.inflight[key]; ok {
			c.mu.Unlock()
			wg.Wait()
			continue
		}
		wg := &sync.WaitGroup{}
		wg.Add(1)
		c.inflight[key] = wg
		c.mu.Unlock()

		data, err := c.generate(ctx, path, width)
		if err == nil {
			if writeErr := os.WriteFile(file, data, 0o644); writeErr == nil {
				c.sweepStale(path, mtime, width)
			}
		}

		c.mu.Lock()
		delete(c.inflight, key)
		c.mu.Unlock()
		wg.Done()
		return data, err
	}
}

func (c *Cache) generate(ctx context.Context, path string, width int) ([]byte, error) {
	rc, err := c.source.RawImage(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	img, _, err := image.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	resized := resize.Resize(uint(width), 0, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// sweepStale removes cached thumbnails for older versions of the same
// image at the same width.
func (c *Cache) sweepStale(path string, mtime int64, width int) {
	pattern := fmt.Sprintf("%x_*_w%d.jpg", md5.Sum([]byte(path)), width)
	matches, err := filepath.Glob(filepath.Join(c.dir, pattern))
	if err != nil {
		return
	}
	keep := cacheKey(path, mtime, width)
	for _, match := range matches {
		if filepath.Base(match) != keep {
			os.Remove(match)
		}
	}
}
