package texture

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// MetadataSize is the fixed size of the companion descriptor record.
const MetadataSize = 256

// SizeFieldOffset is where the descriptor stores the texture's byte size.
// The repacker rejects a texture whose descriptor disagrees with the raw
// file's true length, so replacements must patch this field.
const SizeFieldOffset = 244

// ErrMetadataSize is returned when a descriptor record is not exactly
// 256 bytes. A record of any other length is refused outright rather than
// patched, since its layout cannot be trusted.
var ErrMetadataSize = errors.New("descriptor record is not 256 bytes")

// Metadata is the decoded form of the companion descriptor stored under
// the same file symbol as the raw texture, in a separate content bucket.
// The first 32 bytes are the known fields; the tail is opaque and must be
// carried through unchanged when a descriptor is rewritten.
type Metadata struct {
	Width      uint32 // +0x00: texture width in pixels
	Height     uint32 // +0x04: texture height in pixels
	MipLevels  uint32 // +0x08: number of mipmap levels
	DXGIFormat uint32 // +0x0C: DXGI_FORMAT enum value

	// ContainerSize (+0x10) counts the texture with its DDS header;
	// PayloadSize (+0x14) counts the headerless data alone.
	ContainerSize uint32
	PayloadSize   uint32

	Flags     uint32 // +0x18
	ArraySize uint32 // +0x1C: 1 for plain 2D textures

	Reserved [224]byte // +0x20: opaque tail
}

// ParseMetadata decodes a descriptor record. The record must be exactly
// 256 bytes or ErrMetadataSize is returned.
func ParseMetadata(record []byte) (*Metadata, error) {
	if len(record) != MetadataSize {
		return nil, fmt.Errorf("%w: got %d", ErrMetadataSize, len(record))
	}
	m := &Metadata{
		Width:         binary.LittleEndian.Uint32(record[0x00:]),
		Height:        binary.LittleEndian.Uint32(record[0x04:]),
		MipLevels:     binary.LittleEndian.Uint32(record[0x08:]),
		DXGIFormat:    binary.LittleEndian.Uint32(record[0x0C:]),
		ContainerSize: binary.LittleEndian.Uint32(record[0x10:]),
		PayloadSize:   binary.LittleEndian.Uint32(record[0x14:]),
		Flags:         binary.LittleEndian.Uint32(record[0x18:]),
		ArraySize:     binary.LittleEndian.Uint32(record[0x1C:]),
	}
	copy(m.Reserved[:], record[0x20:])
	return m, nil
}

// Encode serializes the descriptor back to its 256-byte record form.
func (m *Metadata) Encode() []byte {
	record := make([]byte, MetadataSize)
	binary.LittleEndian.PutUint32(record[0x00:], m.Width)
	binary.LittleEndian.PutUint32(record[0x04:], m.Height)
	binary.LittleEndian.PutUint32(record[0x08:], m.MipLevels)
	binary.LittleEndian.PutUint32(record[0x0C:], m.DXGIFormat)
	binary.LittleEndian.PutUint32(record[0x10:], m.ContainerSize)
	binary.LittleEndian.PutUint32(record[0x14:], m.PayloadSize)
	binary.LittleEndian.PutUint32(record[0x18:], m.Flags)
	binary.LittleEndian.PutUint32(record[0x1C:], m.ArraySize)
	copy(record[0x20:], m.Reserved[:])
	return record
}

func (m *Metadata) String() string {
	return fmt.Sprintf(
		"%dx%d, %d mips, format=%s, container=%d bytes, payload=%d bytes",
		m.Width, m.Height, m.MipLevels,
		FormatName(m.DXGIFormat),
		m.ContainerSize, m.PayloadSize,
	)
}

// PatchFileSize writes size into the descriptor's size field in place.
// Everything outside bytes [244:248] is left untouched. The record must be
// exactly 256 bytes or nothing is modified and ErrMetadataSize is returned.
func PatchFileSize(record []byte, size uint32) error {
	if len(record) != MetadataSize {
		return fmt.Errorf("%w: got %d", ErrMetadataSize, len(record))
	}
	binary.LittleEndian.PutUint32(record[SizeFieldOffset:SizeFieldOffset+4], size)
	return nil
}

// FileSizeField reads the descriptor's size field.
func FileSizeField(record []byte) (uint32, error) {
	if len(record) != MetadataSize {
		return 0, fmt.Errorf("%w: got %d", ErrMetadataSize, len(record))
	}
	return binary.LittleEndian.Uint32(record[SizeFieldOffset : SizeFieldOffset+4]), nil
}
