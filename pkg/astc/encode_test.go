package astc

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func newTestEncoder(t *testing.T, codec BlockCodec, table *DimensionTable) *Encoder {
	t.Helper()
	return &Encoder{
		Codec:      codec,
		Table:      table,
		Memo:       NewParamStore(),
		ScratchDir: t.TempDir(),
		Log:        zerolog.Nop(),
	}
}

func writeTestImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "replacement.png")
	if err := os.WriteFile(path, bytes.Repeat([]byte{1}, 128), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEncodePadsShortOutput(t *testing.T) {
	codec := &fakeCodec{encodeBytes: 1000}
	table := NewDimensionTable(map[string][2]int{"visor": {512, 512}})
	e := newTestEncoder(t, codec, table)

	out, err := e.Encode(context.Background(), "visor", writeTestImage(t), 1600)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	if len(out) != 1600 {
		t.Fatalf("Expected 1600 bytes, got %d", len(out))
	}
	if !bytes.Equal(out[:1000], bytes.Repeat([]byte{0xE1}, 1000)) {
		t.Error("Encoded payload was altered")
	}
	for i, b := range out[1000:] {
		if b != 0 {
			t.Errorf("Padding byte %d is %d, expected 0", 1000+i, b)
			break
		}
	}
}

func TestEncodeTruncatesLongOutput(t *testing.T) {
	codec := &fakeCodec{encodeBytes: 2000}
	table := NewDimensionTable(map[string][2]int{"visor": {512, 512}})
	e := newTestEncoder(t, codec, table)

	out, err := e.Encode(context.Background(), "visor", writeTestImage(t), 1600)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	if len(out) != 1600 {
		t.Errorf("Expected 1600 bytes, got %d", len(out))
	}
}

func TestEncodePrefersMemoizedFootprint(t *testing.T) {
	codec := &fakeCodec{encodeBytes: 100}
	table := NewDimensionTable(map[string][2]int{"visor": {512, 512}})
	e := newTestEncoder(t, codec, table)
	e.Memo.Put("visor", Params{Width: 512, Height: 512, BlockW: 6, BlockH: 6, OriginalSize: 300})

	out, err := e.Encode(context.Background(), "visor", writeTestImage(t), 999)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	if len(codec.encodeBlocks) != 1 || codec.encodeBlocks[0] != (BlockSize{6, 6}) {
		t.Errorf("Expected memoized 6x6 footprint, got %v", codec.encodeBlocks)
	}
	// Memoized original size wins over the caller's value.
	if len(out) != 300 {
		t.Errorf("Expected 300 bytes (memoized size), got %d", len(out))
	}
}

func TestEncodeTableFallbackUsesDefaultFootprint(t *testing.T) {
	codec := &fakeCodec{encodeBytes: 100}
	table := NewDimensionTable(map[string][2]int{"visor": {512, 512}})
	e := newTestEncoder(t, codec, table)

	out, err := e.Encode(context.Background(), "visor", writeTestImage(t), 500)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	if len(codec.encodeBlocks) != 1 || codec.encodeBlocks[0] != fallbackBlock {
		t.Errorf("Expected default %s footprint, got %v", fallbackBlock, codec.encodeBlocks)
	}
	if len(out) != 500 {
		t.Errorf("Expected 500 bytes, got %d", len(out))
	}
}

func TestEncodeUnknownTexture(t *testing.T) {
	e := newTestEncoder(t, &fakeCodec{encodeBytes: 100}, NewDimensionTable(nil))

	_, err := e.Encode(context.Background(), "mystery", writeTestImage(t), 100)
	if !errors.Is(err, ErrNoEncodingConfiguration) {
		t.Errorf("Expected ErrNoEncodingConfiguration, got %v", err)
	}
}

func TestEncodeScratchCleanup(t *testing.T) {
	codec := &fakeCodec{encodeBytes: 100}
	table := NewDimensionTable(map[string][2]int{"visor": {512, 512}})
	e := newTestEncoder(t, codec, table)

	if _, err := e.Encode(context.Background(), "visor", writeTestImage(t), 100); err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}

	entries, err := os.ReadDir(e.ScratchDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("Scratch dir not cleaned, %d entries remain", len(entries))
	}
}
