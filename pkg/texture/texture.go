// Package texture provides parsers for Echo VR texture assets.
//
// Echo VR stores textures in three related file shapes:
//  1. Standard DDS files with full headers (PC packages)
//  2. Headerless block-compressed data (ASTC on the standalone headset,
//     occasionally raw BC data on PC)
//  3. A 256-byte companion metadata record, stored under the same file
//     symbol in a separate content bucket, whose embedded byte-size field
//     must match the texture's true size for the repacker to accept it.
package texture

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// Magic is the 4-byte signature of a DDS container.
var Magic = [4]byte{'D', 'D', 'S', ' '}

const (
	// HeaderSize is the fixed size of the DDS header that follows the magic.
	HeaderSize = 124

	// DX10HeaderSize is the size of the extension block that follows the
	// header when the pixel format FourCC is "DX10".
	DX10HeaderSize = 20
)

// ErrNotDDS is returned when data does not begin with the DDS signature or
// is too short to contain a full header. Callers treat it as a sentinel and
// substitute a placeholder preview rather than failing the session.
var ErrNotDDS = errors.New("not a DDS container")

// CompressionFamily classifies how a texture's pixel data is encoded.
type CompressionFamily int

const (
	FamilyUnknown CompressionFamily = iota
	FamilyBC1
	FamilyBC2
	FamilyBC3
	FamilyExtended // DX10 extension block carries a DXGI format code
	FamilyRGB      // uncompressed RGB via pixel-format flags
)

func (f CompressionFamily) String() string {
	switch f {
	case FamilyBC1:
		return "BC1/DXT1"
	case FamilyBC2:
		return "BC2/DXT3"
	case FamilyBC3:
		return "BC3/DXT5"
	case FamilyExtended:
		return "DX10"
	case FamilyRGB:
		return "RGB"
	default:
		return "Unknown"
	}
}

// DecodePath selects how a texture should be turned into a viewable image.
type DecodePath int

const (
	// PathDirect means the registered image decoder is expected to handle
	// the file. A runtime decode failure still falls back to the external
	// converter; the classification is an optimization, not a gate.
	PathDirect DecodePath = iota

	// PathConverter means the format is known to defeat the image decoder
	// and the external converter must be used.
	PathConverter
)

// Info describes a texture file's header contents. It is recomputed on
// every access and never persisted.
type Info struct {
	Width       uint32
	Height      uint32
	MipMapCount uint32
	Family      CompressionFamily

	// DXGIFormat is set only when Family is FamilyExtended.
	DXGIFormat uint32

	// FormatName is a display name for the pixel format. Unrecognized DXGI
	// codes are reported verbatim, not treated as errors.
	FormatName string

	// Problematic marks DXGI formats the registered image decoder is known
	// to mishandle; those are routed straight to the external converter.
	Problematic bool

	// FileSize is the on-disk size at read time, when known.
	FileSize int64
}

// DecodePath reports which decode route the classifier picks for this info.
func (i *Info) DecodePath() DecodePath {
	if i.Problematic {
		return PathConverter
	}
	return PathDirect
}

func (i *Info) String() string {
	return fmt.Sprintf("%dx%d, %d mips, %s, %d bytes",
		i.Width, i.Height, i.MipMapCount, i.FormatName, i.FileSize)
}

// Parse reads the fixed-layout DDS header from data.
//
// Offsets within the 124-byte header (which follows the 4-byte magic):
// height at 8, width at 12, mipmap count at 24, pixel-format flags at 76,
// FourCC at 80. A FourCC of "DX10" means a 20-byte extension block follows
// the header; its first 4 bytes are the DXGI format code.
func Parse(data []byte) (*Info, error) {
	if len(data) < 4+HeaderSize {
		return nil, ErrNotDDS
	}
	if [4]byte(data[0:4]) != Magic {
		return nil, ErrNotDDS
	}

	header := data[4 : 4+HeaderSize]
	info := &Info{
		Height:      binary.LittleEndian.Uint32(header[8:12]),
		Width:       binary.LittleEndian.Uint32(header[12:16]),
		MipMapCount: binary.LittleEndian.Uint32(header[24:28]),
		FileSize:    int64(len(data)),
	}

	pfFlags := binary.LittleEndian.Uint32(header[76:80])
	fourCC := [4]byte(header[80:84])

	switch fourCC {
	case [4]byte{'D', 'X', 'T', '1'}:
		info.Family = FamilyBC1
	case [4]byte{'D', 'X', 'T', '3'}:
		info.Family = FamilyBC2
	case [4]byte{'D', 'X', 'T', '5'}:
		info.Family = FamilyBC3
	case [4]byte{'D', 'X', '1', '0'}:
		if len(data) < 4+HeaderSize+DX10HeaderSize {
			return nil, ErrNotDDS
		}
		info.Family = FamilyExtended
		info.DXGIFormat = binary.LittleEndian.Uint32(data[4+HeaderSize : 4+HeaderSize+4])
		info.Problematic = problematicFormats[info.DXGIFormat]
	default:
		if pfFlags&DDPFRGB != 0 {
			info.Family = FamilyRGB
		} else {
			info.Family = FamilyUnknown
		}
	}

	info.FormatName = info.Family.String()
	if info.Family == FamilyExtended {
		info.FormatName = FormatName(info.DXGIFormat)
	}

	return info, nil
}

// ParseFile reads and parses the header of the texture at path.
func ParseFile(path string) (*Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read texture: %w", err)
	}
	return Parse(data)
}

// HasMagic reports whether data begins with the DDS signature.
func HasMagic(data []byte) bool {
	return len(data) >= 4 && [4]byte(data[0:4]) == Magic
}

// DDS header field constants used when synthesizing containers.
const (
	synthHeaderFlags = 0x0002100F // caps|height|width|pitch|pixelformat|mipmapcount
	synthCaps        = 0x1000     // DDSCAPS_TEXTURE

	// DDPFRGB marks an uncompressed RGB pixel format.
	DDPFRGB = 0x40

	ddpfFourCC      = 0x4
	pixelFormatSize = 32
)

// SynthesizeHeader builds the 148-byte preamble (magic + header + DX10
// extension) the external converter needs in front of headerless block
// data. The layout reproduces the game's own containers field for field:
// flags 0x0002100F, pitch/depth zero, one mip level, FourCC "DX10", caps
// 0x1000, resource dimension 3 (TEXTURE2D), array size 1.
func SynthesizeHeader(width, height, dxgiFormat uint32) []byte {
	buf := make([]byte, 4+HeaderSize+DX10HeaderSize)

	copy(buf[0:4], Magic[:])
	binary.LittleEndian.PutUint32(buf[4:8], HeaderSize)
	binary.LittleEndian.PutUint32(buf[8:12], synthHeaderFlags)
	binary.LittleEndian.PutUint32(buf[12:16], height)
	binary.LittleEndian.PutUint32(buf[16:20], width)
	// pitchOrLinearSize and depth stay zero
	binary.LittleEndian.PutUint32(buf[28:32], 1) // mipMapCount
	// reserved1[11] stays zero

	// DDS_PIXELFORMAT at header offset 72 (absolute 76)
	binary.LittleEndian.PutUint32(buf[76:80], pixelFormatSize)
	binary.LittleEndian.PutUint32(buf[80:84], ddpfFourCC)
	copy(buf[84:88], "DX10")
	// bit count and channel masks stay zero

	binary.LittleEndian.PutUint32(buf[108:112], synthCaps)
	// caps2..4 and reserved2 stay zero

	ext := buf[4+HeaderSize:]
	binary.LittleEndian.PutUint32(ext[0:4], dxgiFormat)
	binary.LittleEndian.PutUint32(ext[4:8], 3) // resourceDimension = TEXTURE2D
	// miscFlag stays zero
	binary.LittleEndian.PutUint32(ext[12:16], 1) // arraySize
	// miscFlags2 stays zero

	return buf
}
