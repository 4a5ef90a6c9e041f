package preview

import (
	"bytes"
	"context"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/heisthecat31/EchoVR-Texture-Editor/pkg/texture"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 0x80, 0xFF})
		}
	}
	return img
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	return &Cache{Dir: t.TempDir(), Log: zerolog.Nop()}
}

// countingConverter fakes the texconv driver by dropping a valid PNG into
// outDir and counting invocations.
type countingConverter struct {
	calls int
	infos []*texture.Info
	fail  bool
}

func (c *countingConverter) Convert(_ context.Context, _, key string, info *texture.Info, outDir string) (string, error) {
	c.calls++
	c.infos = append(c.infos, info)
	if c.fail {
		return "", ErrConversionFailed
	}
	out := filepath.Join(outDir, key+".png")
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(8, 8)); err != nil {
		return "", err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

func newTestLoader(t *testing.T, conv *countingConverter) *Loader {
	t.Helper()
	return &Loader{Cache: newTestCache(t), Converter: conv, Log: zerolog.Nop()}
}

func TestKey(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/data/extracted/lobby_wall", "lobby_wall"},
		{"/data/extracted/floor.dds", "floor"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := Key(tt.path); got != tt.expected {
			t.Errorf("Key(%q): expected %q, got %q", tt.path, tt.expected, got)
		}
	}
}

func TestCacheRoundTrip(t *testing.T) {
	c := newTestCache(t)

	if _, ok := c.Get("wall"); ok {
		t.Error("Expected miss on empty cache")
	}
	if err := c.Store("wall", testImage(16, 16)); err != nil {
		t.Fatalf("Failed to store: %v", err)
	}
	if !c.Contains("wall") {
		t.Error("Expected entry to exist after store")
	}
	img, ok := c.Get("wall")
	if !ok {
		t.Fatal("Expected hit after store")
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 16 {
		t.Errorf("Expected 16x16, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestCacheEvictsCorruptEntry(t *testing.T) {
	c := newTestCache(t)
	path := c.Path("broken")
	if err := os.WriteFile(path, []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Get("broken"); ok {
		t.Error("Expected corrupt entry to miss")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected corrupt entry to be removed")
	}

	// After eviction a fresh store works again.
	if err := c.Store("broken", testImage(4, 4)); err != nil {
		t.Fatalf("Failed to store after eviction: %v", err)
	}
	if _, ok := c.Get("broken"); !ok {
		t.Error("Expected hit after re-store")
	}
}

// writeDXT1Stub writes a file that parses as DXT1 but whose pixel data is
// too short to decode, forcing the converter fallback.
func writeDXT1Stub(t *testing.T, dir, name string) string {
	t.Helper()
	buf := make([]byte, 4+texture.HeaderSize)
	copy(buf[0:4], "DDS ")
	binary.LittleEndian.PutUint32(buf[4:8], texture.HeaderSize)
	binary.LittleEndian.PutUint32(buf[12:16], 64)
	binary.LittleEndian.PutUint32(buf[16:20], 64)
	binary.LittleEndian.PutUint32(buf[28:32], 1)
	binary.LittleEndian.PutUint32(buf[80:84], 0x4)
	copy(buf[84:88], "DXT1")
	buf = append(buf, make([]byte, 8)...) // far less than 64x64 needs

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFallsBackToConverter(t *testing.T) {
	conv := &countingConverter{}
	l := newTestLoader(t, conv)
	path := writeDXT1Stub(t, t.TempDir(), "wall")

	img, err := l.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if img == nil {
		t.Fatal("Expected an image")
	}
	if conv.calls != 1 {
		t.Errorf("Expected 1 converter call, got %d", conv.calls)
	}
}

func TestLoadUsesCache(t *testing.T) {
	conv := &countingConverter{}
	l := newTestLoader(t, conv)
	path := writeDXT1Stub(t, t.TempDir(), "wall")

	if _, err := l.Load(context.Background(), path); err != nil {
		t.Fatalf("First load failed: %v", err)
	}
	if _, err := l.Load(context.Background(), path); err != nil {
		t.Fatalf("Second load failed: %v", err)
	}
	if conv.calls != 1 {
		t.Errorf("Expected the second load to hit the cache, got %d converter calls", conv.calls)
	}
}

func TestLoadConvertsHeaderlessData(t *testing.T) {
	// Raw block data without a DDS magic goes to the converter, which
	// synthesizes a header for it; no placeholder.
	conv := &countingConverter{}
	l := newTestLoader(t, conv)

	path := filepath.Join(t.TempDir(), "blocks")
	if err := os.WriteFile(path, bytes.Repeat([]byte{0xBC}, 4096), 0o644); err != nil {
		t.Fatal(err)
	}

	img, err := l.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 8 {
		t.Errorf("Expected the converter's 8x8 output, got %dx%d", b.Dx(), b.Dy())
	}
	if conv.calls != 1 {
		t.Fatalf("Expected 1 converter call, got %d", conv.calls)
	}
	if conv.infos[0] != nil {
		t.Error("Headerless data should reach the converter without parsed info")
	}
}

func TestLoadPlaceholderWhenHeaderlessConversionFails(t *testing.T) {
	// Only when the converter also rejects a headerless file does a
	// placeholder stand in.
	conv := &countingConverter{fail: true}
	l := newTestLoader(t, conv)

	path := filepath.Join(t.TempDir(), "readme")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	img, err := l.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Expected placeholder, got error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != placeholderSize || b.Dy() != placeholderSize {
		t.Errorf("Expected %dx%d placeholder, got %dx%d",
			placeholderSize, placeholderSize, b.Dx(), b.Dy())
	}
	if conv.calls != 1 {
		t.Errorf("Expected the converter to be attempted once, got %d calls", conv.calls)
	}
}

func TestLoadConverterFailure(t *testing.T) {
	conv := &countingConverter{fail: true}
	l := newTestLoader(t, conv)
	path := writeDXT1Stub(t, t.TempDir(), "wall")

	if _, err := l.Load(context.Background(), path); err == nil {
		t.Error("Expected error when conversion fails")
	}
}

func TestPlaceholderHasLabelArea(t *testing.T) {
	img := Placeholder(128, 64, "missing.dat")
	b := img.Bounds()
	if b.Dx() != 128 || b.Dy() != 64 {
		t.Fatalf("Expected 128x64, got %dx%d", b.Dx(), b.Dy())
	}
	// Grid lines land on the step boundary.
	if img.At(placeholderGridStep, 5) != placeholderGrid {
		t.Error("Expected a grid line at the step boundary")
	}
	if img.At(1, 1) != placeholderBG {
		t.Error("Expected background color off the grid")
	}
}

func TestFitForDisplay(t *testing.T) {
	small := testImage(100, 50)
	if got := FitForDisplay(small); got != small {
		t.Error("Small image should pass through untouched")
	}

	wide := FitForDisplay(testImage(4096, 1024))
	if b := wide.Bounds(); b.Dx() != previewMax || b.Dy() != previewMax/4 {
		t.Errorf("Expected %dx%d, got %dx%d", previewMax, previewMax/4, b.Dx(), b.Dy())
	}

	tall := FitForDisplay(testImage(512, 2048))
	if b := tall.Bounds(); b.Dy() != previewMax || b.Dx() != previewMax/4 {
		t.Errorf("Expected %dx%d, got %dx%d", previewMax/4, previewMax, b.Dx(), b.Dy())
	}
}

func TestFormatCodeFromName(t *testing.T) {
	tests := []struct {
		name     string
		expected uint32
	}{
		{"BC3/DXT5", texture.DXGIFormatBC3Unorm},
		{"DXGI_FORMAT_BC5_UNORM", texture.DXGIFormatBC5Unorm},
		{"DXGI_FORMAT_BC4_SNORM", texture.DXGIFormatBC4Unorm},
		{"DXGI_FORMAT_R11G11B10_FLOAT", texture.DXGIFormatR11G11B10Float},
		{"RGB", texture.DXGIFormatBC1Unorm},
		{"", texture.DXGIFormatBC1Unorm},
	}
	for _, tt := range tests {
		if got := formatCodeFromName(tt.name); got != tt.expected {
			t.Errorf("%q: expected %d, got %d", tt.name, tt.expected, got)
		}
	}
}

func TestSynthesizeHeaderDefaults(t *testing.T) {
	c := &Converter{}

	header := c.synthesizeHeader(nil)
	info, err := texture.Parse(header)
	if err != nil {
		t.Fatalf("Synthesized header did not parse: %v", err)
	}
	if info.Width != defaultWidth || info.Height != defaultHeight {
		t.Errorf("Expected default %dx%d, got %dx%d",
			defaultWidth, defaultHeight, info.Width, info.Height)
	}
	if info.DXGIFormat != texture.DXGIFormatBC1Unorm {
		t.Errorf("Expected BC1 default, got %d", info.DXGIFormat)
	}

	known := &texture.Info{
		Width: 512, Height: 1024,
		Family:     texture.FamilyExtended,
		DXGIFormat: 78, // BC3 sRGB collapses to BC3
	}
	header = c.synthesizeHeader(known)
	info, err = texture.Parse(header)
	if err != nil {
		t.Fatalf("Synthesized header did not parse: %v", err)
	}
	if info.Width != 512 || info.Height != 1024 {
		t.Errorf("Expected 512x1024, got %dx%d", info.Width, info.Height)
	}
	if info.DXGIFormat != texture.DXGIFormatBC3Unorm {
		t.Errorf("Expected BC3, got %d", info.DXGIFormat)
	}
}
