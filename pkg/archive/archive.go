// Package archive reads and writes the game's ZSTD-framed blobs and scans
// a data directory for loadable packages. Manifests and package payloads
// share one frame layout: a 24-byte header followed by a zstd stream.
package archive

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/DataDog/zstd"
)

// Magic identifies a framed blob ("ZSTD").
var Magic = [4]byte{'Z', 'S', 'T', 'D'}

// FrameHeaderSize is the fixed size of the frame header: magic, payload
// header length, uncompressed size, compressed size.
const FrameHeaderSize = 24

// frame payload-header length is always 16 (the two u64 size fields).
const payloadHeaderLength = 16

// ErrBadFrame is returned when a blob does not start with a valid frame
// header.
var ErrBadFrame = errors.New("invalid archive frame header")

// FrameHeader describes one framed blob.
type FrameHeader struct {
	UncompressedSize uint64
	CompressedSize   uint64
}

// ParseFrameHeader decodes and validates a frame header.
func ParseFrameHeader(data []byte) (FrameHeader, error) {
	if len(data) < FrameHeaderSize {
		return FrameHeader{}, fmt.Errorf("%w: %d bytes", ErrBadFrame, len(data))
	}
	if [4]byte(data[0:4]) != Magic {
		return FrameHeader{}, fmt.Errorf("%w: bad magic %x", ErrBadFrame, data[0:4])
	}
	if hl := binary.LittleEndian.Uint32(data[4:8]); hl != payloadHeaderLength {
		return FrameHeader{}, fmt.Errorf("%w: header length %d", ErrBadFrame, hl)
	}
	h := FrameHeader{
		UncompressedSize: binary.LittleEndian.Uint64(data[8:16]),
		CompressedSize:   binary.LittleEndian.Uint64(data[16:24]),
	}
	if h.UncompressedSize == 0 {
		return FrameHeader{}, fmt.Errorf("%w: zero uncompressed size", ErrBadFrame)
	}
	return h, nil
}

func (h FrameHeader) encode() []byte {
	buf := make([]byte, FrameHeaderSize)
	copy(buf[0:4], Magic[:])
	binary.LittleEndian.PutUint32(buf[4:8], payloadHeaderLength)
	binary.LittleEndian.PutUint64(buf[8:16], h.UncompressedSize)
	binary.LittleEndian.PutUint64(buf[16:24], h.CompressedSize)
	return buf
}

// Decompress reads a framed blob and returns its uncompressed payload.
func Decompress(r io.Reader) ([]byte, error) {
	head := make([]byte, FrameHeaderSize)
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, fmt.Errorf("read frame header: %w", err)
	}
	h, err := ParseFrameHeader(head)
	if err != nil {
		return nil, err
	}

	zr := zstd.NewReader(r)
	defer zr.Close()

	out := make([]byte, h.UncompressedSize)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, fmt.Errorf("decompress payload: %w", err)
	}
	return out, nil
}

// Compress frames and compresses data into a blob the game accepts.
func Compress(data []byte) ([]byte, error) {
	payload, err := zstd.CompressLevel(nil, data, zstd.BestSpeed)
	if err != nil {
		return nil, fmt.Errorf("compress payload: %w", err)
	}
	h := FrameHeader{
		UncompressedSize: uint64(len(data)),
		CompressedSize:   uint64(len(payload)),
	}
	return append(h.encode(), payload...), nil
}
