package astc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// BlockCodec decodes and encodes .astc files. The production implementation
// shells out to astcenc; tests substitute a fake.
type BlockCodec interface {
	// Decode converts a wrapped .astc file into a PNG at pngPath.
	Decode(ctx context.Context, astcPath, pngPath string) error

	// Encode compresses the image at imagePath into a wrapped .astc file
	// using the given block footprint.
	Encode(ctx context.Context, imagePath, astcPath string, b BlockSize) error
}

// ToolCodec drives the astcenc command-line encoder.
type ToolCodec struct {
	// Path locates the astcenc binary.
	Path string

	// Quality is the encoder effort preset, "-medium" when empty.
	Quality string

	Log zerolog.Logger
}

func (c *ToolCodec) Decode(ctx context.Context, astcPath, pngPath string) error {
	cmd := exec.CommandContext(ctx, c.Path, "-dl", astcPath, pngPath)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	c.Log.Debug().Str("in", astcPath).Str("out", pngPath).Msg("astcenc decode")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("astcenc decode: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

func (c *ToolCodec) Encode(ctx context.Context, imagePath, astcPath string, b BlockSize) error {
	quality := c.Quality
	if quality == "" {
		quality = "-medium"
	}
	cmd := exec.CommandContext(ctx, c.Path, "-cl", imagePath, astcPath, b.String(), quality)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	c.Log.Debug().Str("in", imagePath).Str("out", astcPath).Str("block", b.String()).Msg("astcenc encode")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("astcenc encode: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// ErrNoConfiguration is returned when no candidate configuration decodes a
// texture's block data.
var ErrNoConfiguration = errors.New("no decode configuration found")

// candidate is one configuration the search attempts.
type candidate struct {
	width  int
	height int
	block  BlockSize
}

// bruteDimensions are the image sizes the brute-force phase tries when the
// dimension table has no entry for a texture. Game textures are square
// powers of two in this range.
var bruteDimensions = [][2]int{
	{256, 256}, {512, 512}, {1024, 1024}, {2048, 2048}, {4096, 4096},
}

// bruteBlocks are the footprints the brute-force phase pairs with each
// dimension guess. The analytic size filter discards impossible pairs, so
// this stays short.
var bruteBlocks = []BlockSize{{4, 4}, {8, 8}, {6, 6}}

// Searcher recovers the decode configuration of a headerless ASTC texture
// by attempting candidate configurations against the real decoder until one
// produces a plausible image.
type Searcher struct {
	Codec BlockCodec
	Table *DimensionTable
	Memo  *ParamStore

	// ScratchDir hosts per-candidate work files. os.TempDir when empty.
	ScratchDir string

	// SizeTolerance is how far a candidate's analytic size may deviate
	// from the actual payload before it is skipped without a decode
	// attempt. Zero means the default of 100 bytes.
	SizeTolerance int

	// MinDecodedSize is the smallest output the decoder may produce for
	// the attempt to count as a success. Zero means the default of 1000
	// bytes. Exit status alone is not trusted: the decoder sometimes
	// exits zero after writing a near-empty file for a wrong footprint.
	MinDecodedSize int64

	Log zerolog.Logger
}

func (s *Searcher) sizeTolerance() int {
	if s.SizeTolerance > 0 {
		return s.SizeTolerance
	}
	return 100
}

func (s *Searcher) minDecodedSize() int64 {
	if s.MinDecodedSize > 0 {
		return s.MinDecodedSize
	}
	return 1000
}

// Decode turns the headerless block data of the texture called name into a
// PNG at pngPath, searching for the configuration if it is not memoized.
// The winning parameters are memoized and returned.
func (s *Searcher) Decode(ctx context.Context, name string, blocks []byte, pngPath string) (Params, error) {
	if p, ok := s.Memo.Get(name); ok {
		if err := s.attempt(ctx, blocks, candidate{p.Width, p.Height, p.Block()}, pngPath); err == nil {
			return p, nil
		}
		// Stale memo entry, fall through to a fresh search.
		s.Log.Warn().Str("name", name).Msg("memoized parameters no longer decode, searching again")
	}

	for _, cand := range s.candidates(name, len(blocks)) {
		if err := ctx.Err(); err != nil {
			return Params{}, err
		}
		if err := s.attempt(ctx, blocks, cand, pngPath); err != nil {
			s.Log.Debug().
				Str("name", name).
				Str("block", cand.block.String()).
				Int("width", cand.width).
				Int("height", cand.height).
				AnErr("reason", err).
				Msg("candidate rejected")
			continue
		}

		p := Params{
			Width:        cand.width,
			Height:       cand.height,
			BlockW:       cand.block.W,
			BlockH:       cand.block.H,
			OriginalSize: len(blocks),
		}
		s.Memo.Put(name, p)
		s.Log.Info().
			Str("name", name).
			Str("block", cand.block.String()).
			Int("width", p.Width).
			Int("height", p.Height).
			Msg("decode configuration found")
		return p, nil
	}

	return Params{}, fmt.Errorf("%w: %s (%d bytes)", ErrNoConfiguration, name, len(blocks))
}

// candidates builds the ordered attempt list: table-guided configurations
// first, then the size-filtered brute-force grid.
//
// Table-guided candidates are NOT size-filtered. A payload often exceeds
// the single-level analytic size (mip chains ride along after the top
// level), and with trusted dimensions the decoder itself is the cheap
// arbiter across 13 footprints. The filter only prunes the brute grid,
// where it cuts the candidate count by an order of magnitude.
func (s *Searcher) candidates(name string, payload int) []candidate {
	tol := s.sizeTolerance()
	var out []candidate

	if w, h, ok := s.Table.Lookup(name); ok {
		for _, b := range SearchOrder {
			out = append(out, candidate{w, h, b})
		}
	}

	for _, dim := range bruteDimensions {
		for _, b := range bruteBlocks {
			if diff(ExpectedSize(dim[0], dim[1], b), payload) <= tol {
				out = append(out, candidate{dim[0], dim[1], b})
			}
		}
	}

	return out
}

// attempt runs the decoder once for a candidate. All scratch files live in
// a per-attempt directory removed before returning, success or not.
func (s *Searcher) attempt(ctx context.Context, blocks []byte, c candidate, pngPath string) error {
	scratch, err := os.MkdirTemp(s.ScratchDir, "astc-attempt-")
	if err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	wrapped := filepath.Join(scratch, "candidate.astc")
	if err := os.WriteFile(wrapped, WrapBlocks(blocks, c.width, c.height, c.block), 0o644); err != nil {
		return fmt.Errorf("write candidate: %w", err)
	}

	decoded := filepath.Join(scratch, "decoded.png")
	if err := s.Codec.Decode(ctx, wrapped, decoded); err != nil {
		return err
	}

	st, err := os.Stat(decoded)
	if err != nil {
		return fmt.Errorf("decoder produced no output: %w", err)
	}
	if st.Size() <= s.minDecodedSize() {
		return fmt.Errorf("decoded output too small (%d bytes)", st.Size())
	}

	data, err := os.ReadFile(decoded)
	if err != nil {
		return fmt.Errorf("read decoded output: %w", err)
	}
	if err := os.WriteFile(pngPath, data, 0o644); err != nil {
		return fmt.Errorf("write decoded output: %w", err)
	}
	return nil
}

func diff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
