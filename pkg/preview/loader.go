package preview

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/anthonynsimon/bild/transform"
	"github.com/rs/zerolog"

	"github.com/heisthecat31/EchoVR-Texture-Editor/pkg/texture"

	// Register decoders for the direct path: DDS for package textures,
	// PNG/JPEG/BMP for user-supplied replacement images.
	_ "image/jpeg"
	_ "image/png"

	_ "github.com/lukegb/dds"
	_ "golang.org/x/image/bmp"
)

// pngConverter is the converter surface the loader needs. *Converter
// satisfies it; tests substitute a counting fake.
type pngConverter interface {
	Convert(ctx context.Context, srcPath, key string, info *texture.Info, outDir string) (string, error)
}

// Loader resolves a texture path to a preview image, going through the
// cache, the direct decoder, and the external converter in that order.
type Loader struct {
	Cache     *Cache
	Converter pngConverter
	Log       zerolog.Logger
}

// placeholderSize is the panel size for files that are not textures.
const placeholderSize = 256

// Load returns a preview image for the texture at path.
//
// Order of attack: cache hit; direct image decode for formats the DDS
// decoder handles; external conversion otherwise (or when the direct
// decode fails at runtime). Headerless files go to the converter too,
// which synthesizes a container for them; only when that conversion also
// fails does a placeholder stand in, so a mixed content bucket can be
// browsed without babysitting.
func (l *Loader) Load(ctx context.Context, path string) (image.Image, error) {
	key := Key(path)

	if img, ok := l.Cache.Get(key); ok {
		l.Log.Debug().Str("key", key).Msg("preview cache hit")
		return img, nil
	}

	// info stays nil for headerless block data; the converter then works
	// from a synthesized header.
	info, err := texture.ParseFile(path)
	if err != nil {
		if !errors.Is(err, texture.ErrNotDDS) {
			return nil, err
		}
		info = nil
	}

	if info != nil && info.DecodePath() == texture.PathDirect {
		if img, err := decodeFile(path); err == nil {
			if err := l.Cache.Store(key, img); err != nil {
				return nil, err
			}
			return img, nil
		}
		// The classifier is advisory; a runtime decode failure still
		// falls through to the converter.
		l.Log.Debug().Str("key", key).Msg("direct decode failed, converting")
	}

	if _, err := l.Converter.Convert(ctx, path, key, info, l.Cache.Dir); err != nil {
		if info == nil {
			l.Log.Debug().Str("key", key).Err(err).Msg("headerless conversion failed, using placeholder")
			return Placeholder(placeholderSize, placeholderSize, key), nil
		}
		return nil, fmt.Errorf("convert %s: %w", key, err)
	}
	img, ok := l.Cache.Get(key)
	if !ok {
		return nil, fmt.Errorf("convert %s: %w", key, ErrConversionFailed)
	}
	return img, nil
}

// Info parses the header of the texture at path without decoding pixels.
func (l *Loader) Info(path string) (*texture.Info, error) {
	return texture.ParseFile(path)
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

// previewMax bounds the preview edge length; larger textures are scaled
// down for display.
const previewMax = 1024

// FitForDisplay scales img down to fit previewMax on its longest edge,
// preserving aspect ratio. Smaller images pass through untouched.
func FitForDisplay(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= previewMax && h <= previewMax {
		return img
	}
	if w >= h {
		h = h * previewMax / w
		w = previewMax
	} else {
		w = w * previewMax / h
		h = previewMax
	}
	return transform.Resize(img, w, h, transform.Lanczos)
}

// Compare summarizes an original texture against a proposed replacement.
type Comparison struct {
	Original    *texture.Info
	Replacement *texture.Info
}

func (c Comparison) String() string {
	return fmt.Sprintf("original %s | replacement %s", c.Original, c.Replacement)
}

// Compare parses both files and pairs their header info for display.
func Compare(originalPath, replacementPath string) (*Comparison, error) {
	orig, err := texture.ParseFile(originalPath)
	if err != nil {
		return nil, fmt.Errorf("original: %w", err)
	}
	repl, err := texture.ParseFile(replacementPath)
	if err != nil {
		return nil, fmt.Errorf("replacement: %w", err)
	}
	return &Comparison{Original: orig, Replacement: repl}, nil
}
