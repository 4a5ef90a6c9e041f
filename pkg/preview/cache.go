// Package preview turns package textures into viewable images: a PNG
// conversion cache, direct decoding for well-supported DDS formats, an
// external converter fallback, and placeholder synthesis for files that are
// not textures at all.
package preview

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Cache stores converted previews as PNG files keyed by texture base name.
// Extracted package content is immutable, so the name alone identifies the
// content; there is no mtime or hash in the key.
type Cache struct {
	Dir string
	Log zerolog.Logger
}

// Key derives the cache key for a texture path: the base name without its
// extension.
func Key(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Path returns where the preview for key lives, whether or not it exists.
func (c *Cache) Path(key string) string {
	return filepath.Join(c.Dir, key+".png")
}

// Get returns the cached preview for key. A cache file that exists but no
// longer decodes is evicted and reported as a miss, so one bad write never
// wedges a texture permanently.
func (c *Cache) Get(key string) (image.Image, bool) {
	path := c.Path(key)
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}

	img, err := png.Decode(f)
	f.Close()
	if err != nil {
		c.Log.Warn().Str("key", key).Err(err).Msg("evicting corrupt cache entry")
		os.Remove(path)
		return nil, false
	}
	return img, true
}

// Store writes img as the preview for key.
func (c *Cache) Store(key string, img image.Image) error {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	f, err := os.Create(c.Path(key))
	if err != nil {
		return fmt.Errorf("create cache entry: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	return nil
}

// Contains reports whether a preview for key exists on disk. It does not
// validate the entry; Get does that.
func (c *Cache) Contains(key string) bool {
	_, err := os.Stat(c.Path(key))
	return err == nil
}
