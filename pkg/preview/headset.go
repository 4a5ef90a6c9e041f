package preview

import (
	"context"
	"fmt"
	"image"
	"os"

	"github.com/rs/zerolog"

	"github.com/heisthecat31/EchoVR-Texture-Editor/pkg/astc"
)

// HeadsetLoader resolves headset ASTC textures to previews. The conversion
// cache is consulted before the search engine, so a texture decoded once is
// never run through the external decoder again.
type HeadsetLoader struct {
	Cache    *Cache
	Searcher *astc.Searcher
	Log      zerolog.Logger
}

// Load returns the preview for the headset texture called name. Block data
// is read through readBlocks, and only on a cache miss.
func (l *HeadsetLoader) Load(ctx context.Context, name string, readBlocks func() ([]byte, error)) (image.Image, error) {
	if img, ok := l.Cache.Get(name); ok {
		l.Log.Debug().Str("key", name).Msg("preview cache hit")
		return img, nil
	}

	blocks, err := readBlocks()
	if err != nil {
		return nil, fmt.Errorf("read blocks for %s: %w", name, err)
	}

	if err := os.MkdirAll(l.Cache.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	if _, err := l.Searcher.Decode(ctx, name, blocks, l.Cache.Path(name)); err != nil {
		return nil, err
	}

	img, ok := l.Cache.Get(name)
	if !ok {
		return nil, fmt.Errorf("decode %s: %w", name, ErrConversionFailed)
	}
	return img, nil
}
