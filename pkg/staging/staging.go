// Package staging prepares texture replacements for the repacker.
//
// A replacement is a pair of files under the same symbol name: the texture
// bytes in the raw content bucket and a 256-byte descriptor in the metadata
// bucket. The repacker compares the descriptor's embedded size field against
// the raw file's true length, so staging always rewrites that field.
package staging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/heisthecat31/EchoVR-Texture-Editor/pkg/texture"
)

// Platform selects which content bucket pair a replacement targets.
type Platform int

const (
	PlatformPC Platform = iota
	PlatformHeadset
)

func (p Platform) String() string {
	if p == PlatformHeadset {
		return "headset"
	}
	return "pc"
}

// Content bucket directory names inside an extracted package. These are the
// game's own type identifiers, rendered in decimal exactly as the extractor
// names the directories.
const (
	bucketPCRaw             = "-4707359568332879775"
	bucketPCDescriptor      = "5353709876897953952"
	bucketHeadsetRaw        = "-2094201140079393352"
	bucketHeadsetDescriptor = "5231972605540061417"
)

// RawBucket returns the raw-texture bucket directory name for p.
func (p Platform) RawBucket() string {
	if p == PlatformHeadset {
		return bucketHeadsetRaw
	}
	return bucketPCRaw
}

// DescriptorBucket returns the descriptor bucket directory name for p.
func (p Platform) DescriptorBucket() string {
	if p == PlatformHeadset {
		return bucketHeadsetDescriptor
	}
	return bucketPCDescriptor
}

// ErrCompanionNotFound is returned when the descriptor for a texture is
// missing from the extracted package. Staging refuses to continue: the
// repacker would reject a raw file without its descriptor anyway.
var ErrCompanionNotFound = errors.New("companion descriptor not found")

// Stager copies replacement pairs from an extracted package tree into a
// staging tree the repacker consumes as its modified-files input.
type Stager struct {
	// ExtractedDir is the root of the extracted package (contains the
	// bucket directories).
	ExtractedDir string

	// StagingDir is the root of the modified-files tree handed to the
	// repacker. Bucket subdirectories are created on demand.
	StagingDir string

	Log zerolog.Logger
}

// Stage places data under name in the raw bucket for p and stages the
// matching descriptor with its size field patched to len(data).
//
// The descriptor is read from the extracted tree, validated, patched in
// memory, and written once. On any error nothing is left half-written in
// the descriptor bucket.
func (s *Stager) Stage(p Platform, name string, data []byte) error {
	record, err := s.readCompanion(p, name)
	if err != nil {
		return err
	}
	meta, err := texture.ParseMetadata(record)
	if err != nil {
		return fmt.Errorf("companion descriptor for %s: %w", name, err)
	}

	if err := texture.PatchFileSize(record, uint32(len(data))); err != nil {
		return fmt.Errorf("patch descriptor for %s: %w", name, err)
	}

	rawDir := filepath.Join(s.StagingDir, p.RawBucket())
	descDir := filepath.Join(s.StagingDir, p.DescriptorBucket())
	for _, dir := range []string{rawDir, descDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create staging bucket: %w", err)
		}
	}

	if err := os.WriteFile(filepath.Join(rawDir, name), data, 0o644); err != nil {
		return fmt.Errorf("stage texture: %w", err)
	}
	if err := os.WriteFile(filepath.Join(descDir, name), record, 0o644); err != nil {
		return fmt.Errorf("stage descriptor: %w", err)
	}

	s.Log.Info().
		Str("platform", p.String()).
		Str("name", name).
		Int("bytes", len(data)).
		Str("descriptor", meta.String()).
		Msg("staged replacement")

	return nil
}

// Describe parses the companion descriptor for name from the extracted
// package.
func (s *Stager) Describe(p Platform, name string) (*texture.Metadata, error) {
	record, err := s.readCompanion(p, name)
	if err != nil {
		return nil, err
	}
	meta, err := texture.ParseMetadata(record)
	if err != nil {
		return nil, fmt.Errorf("companion descriptor for %s: %w", name, err)
	}
	return meta, nil
}

func (s *Stager) readCompanion(p Platform, name string) ([]byte, error) {
	record, err := os.ReadFile(filepath.Join(s.ExtractedDir, p.DescriptorBucket(), name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrCompanionNotFound, name)
		}
		return nil, fmt.Errorf("read companion descriptor: %w", err)
	}
	return record, nil
}

// StageFile reads the replacement at path and stages it under name.
func (s *Stager) StageFile(p Platform, name, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read replacement: %w", err)
	}
	return s.Stage(p, name, data)
}

// OriginalPath returns the extracted raw texture's location for name.
func (s *Stager) OriginalPath(p Platform, name string) string {
	return filepath.Join(s.ExtractedDir, p.RawBucket(), name)
}

// ListTextures enumerates the raw bucket of the extracted package and
// returns the names that look like textures: files whose first four bytes
// are the DDS signature, plus .dds-suffixed files that cannot be read.
func (s *Stager) ListTextures(p Platform) ([]string, error) {
	dir := filepath.Join(s.ExtractedDir, p.RawBucket())
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list raw bucket: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		magic := make([]byte, 4)
		f, err := os.Open(filepath.Join(dir, e.Name()))
		if err != nil {
			if filepath.Ext(e.Name()) == ".dds" {
				names = append(names, e.Name())
			}
			continue
		}
		n, _ := f.Read(magic)
		f.Close()
		if n == 4 && texture.HasMagic(magic) {
			names = append(names, e.Name())
		} else if filepath.Ext(e.Name()) == ".dds" {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
