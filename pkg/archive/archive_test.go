package archive

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	original := bytes.Repeat([]byte("echo arena texture data "), 1000)

	blob, err := Compress(original)
	if err != nil {
		t.Fatalf("Failed to compress: %v", err)
	}

	h, err := ParseFrameHeader(blob)
	if err != nil {
		t.Fatalf("Frame header invalid: %v", err)
	}
	if h.UncompressedSize != uint64(len(original)) {
		t.Errorf("Uncompressed size: expected %d, got %d", len(original), h.UncompressedSize)
	}
	if h.CompressedSize != uint64(len(blob)-FrameHeaderSize) {
		t.Errorf("Compressed size: expected %d, got %d", len(blob)-FrameHeaderSize, h.CompressedSize)
	}

	decoded, err := Decompress(bytes.NewReader(blob))
	if err != nil {
		t.Fatalf("Failed to decompress: %v", err)
	}
	if !bytes.Equal(decoded, original) {
		t.Error("Round trip changed the data")
	}
}

func TestParseFrameHeaderRejectsBadData(t *testing.T) {
	valid, err := Compress([]byte("payload"))
	if err != nil {
		t.Fatal(err)
	}

	badMagic := append([]byte(nil), valid...)
	copy(badMagic[0:4], "NOPE")

	badLength := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(badLength[4:8], 99)

	zeroSize := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint64(zeroSize[8:16], 0)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", valid[:10]},
		{"wrong magic", badMagic},
		{"wrong header length", badLength},
		{"zero uncompressed size", zeroSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFrameHeader(tt.data); !errors.Is(err, ErrBadFrame) {
				t.Errorf("Expected ErrBadFrame, got %v", err)
			}
		})
	}
}

// seedPackage writes a manifest blob and a package payload into a fake data
// directory.
func seedPackage(t *testing.T, dataDir, name, packageFile string, manifest []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(dataDir, "manifests"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, "manifests", name), manifest, 0o644); err != nil {
		t.Fatal(err)
	}
	if packageFile != "" {
		if err := os.WriteFile(filepath.Join(dataDir, packageFile), []byte("pkg"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestListPackages(t *testing.T) {
	dataDir := t.TempDir()

	manifest, err := Compress([]byte("manifest payload"))
	if err != nil {
		t.Fatal(err)
	}

	seedPackage(t, dataDir, "aaaa", "aaaa", manifest)
	seedPackage(t, dataDir, "bbbb", "bbbb_0", manifest) // split package
	seedPackage(t, dataDir, PreferredPackage, PreferredPackage, manifest)
	seedPackage(t, dataDir, "orphan", "", manifest)              // no package file
	seedPackage(t, dataDir, "corrupt", "corrupt", []byte("xx")) // bad manifest

	names, err := ListPackages(dataDir)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}

	want := []string{PreferredPackage, "aaaa", "bbbb"}
	if len(names) != len(want) {
		t.Fatalf("Expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], names[i])
		}
	}
}

func TestListPackagesMissingDir(t *testing.T) {
	if _, err := ListPackages(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("Expected error for missing manifests dir")
	}
}
