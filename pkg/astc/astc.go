// Package astc handles the headset texture path: ASTC block data stored
// headerless in the package, wrapped and unwrapped for the external codec,
// with a search engine that recovers the block footprint the game used.
package astc

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// WrapperMagic identifies a standalone .astc file.
const WrapperMagic uint32 = 0x5CA1AB13

// WrapperHeaderSize is the fixed size of the .astc wrapper header: the
// 4-byte magic, three block-dimension bytes, and three 24-bit little-endian
// image dimensions.
const WrapperHeaderSize = 16

// BlockBytes is the size of one compressed ASTC block, fixed for every
// block footprint.
const BlockBytes = 16

// ErrBadWrapper is returned when data does not carry a valid .astc header.
var ErrBadWrapper = errors.New("invalid astc wrapper header")

// BlockSize is an ASTC block footprint in texels.
type BlockSize struct {
	W int
	H int
}

func (b BlockSize) String() string {
	return fmt.Sprintf("%dx%d", b.W, b.H)
}

// SearchOrder is the fixed candidate order for the footprint search, most
// common footprints first. Determinism matters: ties between candidates
// that pass the size filter are broken by this order alone.
var SearchOrder = []BlockSize{
	{4, 4}, {8, 8}, {6, 6}, {5, 5}, {10, 10}, {12, 12},
	{5, 4}, {6, 5}, {8, 5}, {8, 6}, {10, 5}, {10, 6}, {10, 8},
}

// ExpectedSize returns the byte length of an image's compressed blocks for
// a given footprint: blocks are 16 bytes and partial blocks round up.
func ExpectedSize(width, height int, b BlockSize) int {
	blocksW := (width + b.W - 1) / b.W
	blocksH := (height + b.H - 1) / b.H
	return blocksW * blocksH * BlockBytes
}

// WrapBlocks prepends a .astc wrapper header to headerless block data so
// the external codec will accept it.
func WrapBlocks(blocks []byte, width, height int, b BlockSize) []byte {
	out := make([]byte, WrapperHeaderSize+len(blocks))
	binary.LittleEndian.PutUint32(out[0:4], WrapperMagic)
	out[4] = byte(b.W)
	out[5] = byte(b.H)
	out[6] = 1
	putUint24(out[7:10], uint32(width))
	putUint24(out[10:13], uint32(height))
	putUint24(out[13:16], 1)
	copy(out[WrapperHeaderSize:], blocks)
	return out
}

// ParseWrapper reads a .astc wrapper header and returns the footprint,
// image dimensions, and the raw block payload that follows.
func ParseWrapper(data []byte) (b BlockSize, width, height int, blocks []byte, err error) {
	if len(data) < WrapperHeaderSize {
		return BlockSize{}, 0, 0, nil, ErrBadWrapper
	}
	if binary.LittleEndian.Uint32(data[0:4]) != WrapperMagic {
		return BlockSize{}, 0, 0, nil, ErrBadWrapper
	}
	b = BlockSize{W: int(data[4]), H: int(data[5])}
	if b.W == 0 || b.H == 0 || data[6] != 1 {
		return BlockSize{}, 0, 0, nil, ErrBadWrapper
	}
	width = int(getUint24(data[7:10]))
	height = int(getUint24(data[10:13]))
	return b, width, height, data[WrapperHeaderSize:], nil
}

// StripWrapper returns the raw block payload of a .astc file, which is what
// the game package stores.
func StripWrapper(data []byte) ([]byte, error) {
	_, _, _, blocks, err := ParseWrapper(data)
	if err != nil {
		return nil, err
	}
	return blocks, nil
}

func putUint24(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}

func getUint24(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}
