package preview

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/heisthecat31/EchoVR-Texture-Editor/pkg/texture"
)

// ErrConversionFailed is returned when the external converter exits
// nonzero or produces no output.
var ErrConversionFailed = errors.New("external conversion failed")

// Defaults used when a headerless file's dimensions are unknown; the
// converter needs something plausible in the synthesized header and wrong
// guesses merely distort the preview.
const (
	defaultWidth  = 256
	defaultHeight = 256
)

// Converter drives texconv to produce PNG previews for textures the direct
// decoder cannot handle.
type Converter struct {
	// ToolPath locates the texconv binary.
	ToolPath string

	// ScratchDir hosts per-conversion work files. os.TempDir when empty.
	ScratchDir string

	Log zerolog.Logger
}

// Convert renders the texture at srcPath to a PNG named key+".png" inside
// outDir. Files that already carry a DDS header are fed to the converter
// as-is; headerless block data gets a synthesized header built from info
// (or defaults when info is nil).
//
// All intermediate files live in a scratch directory removed on every
// return path; only the final PNG lands in outDir.
func (c *Converter) Convert(ctx context.Context, srcPath, key string, info *texture.Info, outDir string) (string, error) {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return "", fmt.Errorf("read texture: %w", err)
	}

	scratch, err := os.MkdirTemp(c.ScratchDir, "texconv-")
	if err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	// texconv names its output after the input base name.
	input := filepath.Join(scratch, key+".dds")
	if !texture.HasMagic(data) {
		data = append(c.synthesizeHeader(info), data...)
	}
	if err := os.WriteFile(input, data, 0o644); err != nil {
		return "", fmt.Errorf("write converter input: %w", err)
	}

	args := []string{"-ft", "png", "-o", scratch, "-y"}
	if info != nil && info.DXGIFormat == texture.DXGIFormatR11G11B10Float {
		// texconv cannot emit PNG straight from R11G11B10; widen first.
		args = append(args, "-f", "R16G16B16A16_FLOAT")
	}
	args = append(args, input)

	cmd := exec.CommandContext(ctx, c.ToolPath, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	cmd.Stdout = &stderr

	c.Log.Debug().Str("input", input).Strs("args", args).Msg("running texconv")
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: %v: %s", ErrConversionFailed, err, strings.TrimSpace(stderr.String()))
	}

	produced := filepath.Join(scratch, key+".png")
	out, err := os.ReadFile(produced)
	if err != nil {
		return "", fmt.Errorf("%w: converter produced no output: %v", ErrConversionFailed, err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	final := filepath.Join(outDir, key+".png")
	if err := os.WriteFile(final, out, 0o644); err != nil {
		return "", fmt.Errorf("write converted preview: %w", err)
	}
	return final, nil
}

// synthesizeHeader builds the DDS preamble for headerless data. When info
// carries a DXGI code it is collapsed onto a code the converter accepts;
// otherwise BC1 at the default dimensions is assumed.
func (c *Converter) synthesizeHeader(info *texture.Info) []byte {
	width, height := uint32(defaultWidth), uint32(defaultHeight)
	format := uint32(texture.DXGIFormatBC1Unorm)

	if info != nil {
		if info.Width > 0 && info.Height > 0 {
			width, height = info.Width, info.Height
		}
		if info.Family == texture.FamilyExtended {
			format = texture.ConverterFormatCode(info.DXGIFormat)
		} else {
			format = formatCodeFromName(info.FormatName)
		}
	}

	return texture.SynthesizeHeader(width, height, format)
}

// formatCodeFromName maps a display name onto a converter-acceptable DXGI
// code by keyword. Last-resort dispatch for files whose parse produced a
// family name but no code.
func formatCodeFromName(name string) uint32 {
	upper := strings.ToUpper(name)
	switch {
	case strings.Contains(upper, "BC5"):
		return texture.DXGIFormatBC5Unorm
	case strings.Contains(upper, "BC4"):
		return texture.DXGIFormatBC4Unorm
	case strings.Contains(upper, "BC3"), strings.Contains(upper, "DXT5"):
		return texture.DXGIFormatBC3Unorm
	case strings.Contains(upper, "R11G11B10"):
		return texture.DXGIFormatR11G11B10Float
	default:
		return texture.DXGIFormatBC1Unorm
	}
}
