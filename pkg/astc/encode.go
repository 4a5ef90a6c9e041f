package astc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// ErrNoEncodingConfiguration is returned when neither the memo store nor
// the dimension table says how a headset texture should be encoded.
// Encoding blind would produce blocks the game cannot read, so the caller
// is told to decode (and thereby search) the texture first.
var ErrNoEncodingConfiguration = errors.New("no encoding configuration known for texture")

// fallbackBlock is used when the dimension table knows the image size but
// no search has recorded the real footprint.
var fallbackBlock = BlockSize{8, 8}

// Encoder turns a replacement image into headerless ASTC blocks that fit
// the slot of an existing headset texture.
type Encoder struct {
	Codec BlockCodec
	Table *DimensionTable
	Memo  *ParamStore

	// ScratchDir hosts encode work files. os.TempDir when empty.
	ScratchDir string

	Log zerolog.Logger
}

// paramsFor resolves the encode configuration for name. Memoized search
// results win; otherwise the dimension table plus the default footprint and
// the original file's byte size are used.
func (e *Encoder) paramsFor(name string, originalSize int) (Params, error) {
	if p, ok := e.Memo.Get(name); ok {
		return p, nil
	}
	if w, h, ok := e.Table.Lookup(name); ok {
		return Params{
			Width:        w,
			Height:       h,
			BlockW:       fallbackBlock.W,
			BlockH:       fallbackBlock.H,
			OriginalSize: originalSize,
		}, nil
	}
	return Params{}, fmt.Errorf("%w: %s", ErrNoEncodingConfiguration, name)
}

// Encode compresses the image at imagePath for the slot of the texture
// called name, whose original raw payload was originalSize bytes. The
// result is headerless block data padded or truncated to exactly
// originalSize bytes, because the package format records the slot length
// in the companion descriptor and the game maps the file as-is.
func (e *Encoder) Encode(ctx context.Context, name, imagePath string, originalSize int) ([]byte, error) {
	p, err := e.paramsFor(name, originalSize)
	if err != nil {
		return nil, err
	}

	scratch, err := os.MkdirTemp(e.ScratchDir, "astc-encode-")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	out := filepath.Join(scratch, "encoded.astc")
	if err := e.Codec.Encode(ctx, imagePath, out, p.Block()); err != nil {
		return nil, err
	}

	wrapped, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("read encoded output: %w", err)
	}
	blocks, err := StripWrapper(wrapped)
	if err != nil {
		return nil, fmt.Errorf("strip wrapper: %w", err)
	}

	target := p.OriginalSize
	if target <= 0 {
		target = originalSize
	}
	blocks = fitToSize(blocks, target)

	e.Log.Info().
		Str("name", name).
		Str("block", p.Block().String()).
		Int("bytes", len(blocks)).
		Msg("encoded replacement")
	return blocks, nil
}

// fitToSize pads blocks with zero bytes or truncates them so the result is
// exactly target bytes long.
func fitToSize(blocks []byte, target int) []byte {
	switch {
	case len(blocks) == target:
		return blocks
	case len(blocks) > target:
		return blocks[:target]
	default:
		out := make([]byte, target)
		copy(out, blocks)
		return out
	}
}
