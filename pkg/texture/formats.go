package texture

import "fmt"

// DXGI format codes the tooling handles specially.
const (
	DXGIFormatR11G11B10Float = 26
	DXGIFormatBC1Unorm       = 71
	DXGIFormatBC1UnormSRGB   = 72
	DXGIFormatBC3Unorm       = 77
	DXGIFormatBC3UnormSRGB   = 78
	DXGIFormatBC4Unorm       = 80
	DXGIFormatBC5Unorm       = 83
)

// problematicFormats lists DXGI codes the registered image decoder is known
// to mishandle on game assets; these always take the converter path.
var problematicFormats = map[uint32]bool{
	DXGIFormatR11G11B10Float: true,
	DXGIFormatBC1UnormSRGB:   true,
	DXGIFormatBC3UnormSRGB:   true,
}

// dxgiFormatNames is the closed vendor code table. Unknown codes are
// reported verbatim by FormatName rather than treated as parse failures.
var dxgiFormatNames = map[uint32]string{
	0:   "DXGI_FORMAT_UNKNOWN",
	1:   "DXGI_FORMAT_R32G32B32A32_TYPELESS",
	2:   "DXGI_FORMAT_R32G32B32A32_FLOAT",
	3:   "DXGI_FORMAT_R32G32B32A32_UINT",
	4:   "DXGI_FORMAT_R32G32B32A32_SINT",
	5:   "DXGI_FORMAT_R32G32B32_TYPELESS",
	6:   "DXGI_FORMAT_R32G32B32_FLOAT",
	7:   "DXGI_FORMAT_R32G32B32_UINT",
	8:   "DXGI_FORMAT_R32G32B32_SINT",
	9:   "DXGI_FORMAT_R16G16B16A16_TYPELESS",
	10:  "DXGI_FORMAT_R16G16B16A16_FLOAT",
	11:  "DXGI_FORMAT_R16G16B16A16_UNORM",
	12:  "DXGI_FORMAT_R16G16B16A16_UINT",
	13:  "DXGI_FORMAT_R16G16B16A16_SNORM",
	14:  "DXGI_FORMAT_R16G16B16A16_SINT",
	15:  "DXGI_FORMAT_R32G32_TYPELESS",
	16:  "DXGI_FORMAT_R32G32_FLOAT",
	17:  "DXGI_FORMAT_R32G32_UINT",
	18:  "DXGI_FORMAT_R32G32_SINT",
	19:  "DXGI_FORMAT_R32G8X24_TYPELESS",
	20:  "DXGI_FORMAT_D32_FLOAT_S8X24_UINT",
	21:  "DXGI_FORMAT_R32_FLOAT_X8X24_TYPELESS",
	22:  "DXGI_FORMAT_X32_TYPELESS_G8X24_UINT",
	23:  "DXGI_FORMAT_R10G10B10A2_TYPELESS",
	24:  "DXGI_FORMAT_R10G10B10A2_UNORM",
	25:  "DXGI_FORMAT_R10G10B10A2_UINT",
	26:  "DXGI_FORMAT_R11G11B10_FLOAT",
	27:  "DXGI_FORMAT_R8G8B8A8_TYPELESS",
	28:  "DXGI_FORMAT_R8G8B8A8_UNORM",
	29:  "DXGI_FORMAT_R8G8B8A8_UNORM_SRGB",
	30:  "DXGI_FORMAT_R8G8B8A8_UINT",
	31:  "DXGI_FORMAT_R8G8B8A8_SNORM",
	32:  "DXGI_FORMAT_R8G8B8A8_SINT",
	33:  "DXGI_FORMAT_R16G16_TYPELESS",
	34:  "DXGI_FORMAT_R16G16_FLOAT",
	35:  "DXGI_FORMAT_R16G16_UNORM",
	36:  "DXGI_FORMAT_R16G16_UINT",
	37:  "DXGI_FORMAT_R16G16_SNORM",
	38:  "DXGI_FORMAT_R16G16_SINT",
	39:  "DXGI_FORMAT_R32_TYPELESS",
	40:  "DXGI_FORMAT_D32_FLOAT",
	41:  "DXGI_FORMAT_R32_FLOAT",
	42:  "DXGI_FORMAT_R32_UINT",
	43:  "DXGI_FORMAT_R32_SINT",
	44:  "DXGI_FORMAT_R24G8_TYPELESS",
	45:  "DXGI_FORMAT_D24_UNORM_S8_UINT",
	46:  "DXGI_FORMAT_R24_UNORM_X8_TYPELESS",
	47:  "DXGI_FORMAT_X24_TYPELESS_G8_UINT",
	48:  "DXGI_FORMAT_R8G8_TYPELESS",
	49:  "DXGI_FORMAT_R8G8_UNORM",
	50:  "DXGI_FORMAT_R8G8_UINT",
	51:  "DXGI_FORMAT_R8G8_SNORM",
	52:  "DXGI_FORMAT_R8G8_SINT",
	53:  "DXGI_FORMAT_R16_TYPELESS",
	54:  "DXGI_FORMAT_R16_FLOAT",
	55:  "DXGI_FORMAT_D16_UNORM",
	56:  "DXGI_FORMAT_R16_UNORM",
	57:  "DXGI_FORMAT_R16_UINT",
	58:  "DXGI_FORMAT_R16_SNORM",
	59:  "DXGI_FORMAT_R16_SINT",
	60:  "DXGI_FORMAT_R8_TYPELESS",
	61:  "DXGI_FORMAT_R8_UNORM",
	62:  "DXGI_FORMAT_R8_UINT",
	63:  "DXGI_FORMAT_R8_SNORM",
	64:  "DXGI_FORMAT_R8_SINT",
	65:  "DXGI_FORMAT_A8_UNORM",
	66:  "DXGI_FORMAT_R1_UNORM",
	67:  "DXGI_FORMAT_R9G9B9E5_SHAREDEXP",
	68:  "DXGI_FORMAT_R8G8_B8G8_UNORM",
	69:  "DXGI_FORMAT_G8R8_G8B8_UNORM",
	70:  "DXGI_FORMAT_BC1_TYPELESS",
	71:  "DXGI_FORMAT_BC1_UNORM",
	72:  "DXGI_FORMAT_BC1_UNORM_SRGB",
	73:  "DXGI_FORMAT_BC2_TYPELESS",
	74:  "DXGI_FORMAT_BC2_UNORM",
	75:  "DXGI_FORMAT_BC2_UNORM_SRGB",
	76:  "DXGI_FORMAT_BC3_TYPELESS",
	77:  "DXGI_FORMAT_BC3_UNORM",
	78:  "DXGI_FORMAT_BC3_UNORM_SRGB",
	79:  "DXGI_FORMAT_BC4_TYPELESS",
	80:  "DXGI_FORMAT_BC4_UNORM",
	81:  "DXGI_FORMAT_BC4_SNORM",
	82:  "DXGI_FORMAT_BC5_TYPELESS",
	83:  "DXGI_FORMAT_BC5_UNORM",
	84:  "DXGI_FORMAT_BC5_SNORM",
	85:  "DXGI_FORMAT_B5G6R5_UNORM",
	86:  "DXGI_FORMAT_B5G5R5A1_UNORM",
	87:  "DXGI_FORMAT_B8G8R8A8_UNORM",
	88:  "DXGI_FORMAT_B8G8R8X8_UNORM",
	89:  "DXGI_FORMAT_R10G10B10_XR_BIAS_A2_UNORM",
	90:  "DXGI_FORMAT_BC6H_TYPELESS",
	91:  "DXGI_FORMAT_BC6H_UF16",
	92:  "DXGI_FORMAT_BC6H_SF16",
	93:  "DXGI_FORMAT_BC7_TYPELESS",
	94:  "DXGI_FORMAT_BC7_UNORM",
	95:  "DXGI_FORMAT_BC7_UNORM_SRGB",
	96:  "DXGI_FORMAT_AYUV",
	97:  "DXGI_FORMAT_Y410",
	98:  "DXGI_FORMAT_Y416",
	99:  "DXGI_FORMAT_NV12",
	100: "DXGI_FORMAT_P010",
	101: "DXGI_FORMAT_P016",
	102: "DXGI_FORMAT_420_OPAQUE",
	103: "DXGI_FORMAT_YUY2",
	104: "DXGI_FORMAT_Y210",
	105: "DXGI_FORMAT_Y216",
	106: "DXGI_FORMAT_NV11",
	107: "DXGI_FORMAT_AI44",
	108: "DXGI_FORMAT_IA44",
	109: "DXGI_FORMAT_P8",
	110: "DXGI_FORMAT_A8P8",
	111: "DXGI_FORMAT_FORCE_UINT",
}

// FormatName returns the display name for a DXGI format code.
func FormatName(code uint32) string {
	if name, ok := dxgiFormatNames[code]; ok {
		return name
	}
	return fmt.Sprintf("DXGI Format %d", code)
}

// ConverterFormatCode picks the DXGI code to stamp into a synthesized
// header for headerless block data, collapsing typeless/sRGB variants onto
// the UNORM code the converter accepts. BC1 is the default when nothing
// better is known.
func ConverterFormatCode(code uint32) uint32 {
	switch {
	case code >= 70 && code <= 72:
		return DXGIFormatBC1Unorm
	case code >= 76 && code <= 78:
		return DXGIFormatBC3Unorm
	case code >= 79 && code <= 81:
		return DXGIFormatBC4Unorm
	case code >= 82 && code <= 84:
		return DXGIFormatBC5Unorm
	case code == DXGIFormatR11G11B10Float:
		return DXGIFormatR11G11B10Float
	default:
		return DXGIFormatBC1Unorm
	}
}
