package bitmap

import (
	"fmt"
	"strings"
)

const (
	// FileHeaderSize is the size in bytes of the file header.
	FileHeaderSize = 14

	// InfoHeaderSize is the size in bytes of the BITMAPINFOHEADER block.
	InfoHeaderSize = 40

	// HeaderSize is the combined size of both headers and the data offset
	// of every file Encode writes.
	HeaderSize = FileHeaderSize + InfoHeaderSize

	// TypeTag is the little-endian reading of the ASCII "BM" tag.
	TypeTag uint16 = 0x4D42

	// BitsPerPixel is the only pixel depth this package reads and writes.
	BitsPerPixel = 24

	// MaxDimension is the largest width or height Decode accepts.
	MaxDimension = 1 << 16

	bytesPerPixel = BitsPerPixel / 8
)

// FileHeader is the leading block of a bitmap file.
type FileHeader struct {
	Type       uint16 // Must be TypeTag ("BM").
	FileSize   uint32 // Size of the whole file in bytes.
	Reserved1  uint16
	Reserved2  uint16
	DataOffset uint32 // Offset from the start of the file to the pixel array.
}

// InfoHeader describes the dimensions and pixel format.
type InfoHeader struct {
	HeaderSize      uint32 // Size of this block, 40.
	Width           int32  // Width in pixels.
	Height          int32  // Height in pixels; negative means rows are stored top-down.
	Planes          uint16 // Always 1.
	BitsPerPixel    uint16
	Compression     uint32 // 0 (BI_RGB) is the only supported value.
	ImageSize       uint32 // Size of the padded pixel array in bytes.
	XPixelsPerM     int32
	YPixelsPerM     int32
	ColorsUsed      uint32
	ColorsImportant uint32
}

// Header is the pair of headers preceding the pixel array.
type Header struct {
	File FileHeader
	Info InfoHeader
}

// NewHeader synthesizes the header Encode writes for a width x height image:
// 24 bits per pixel, no compression, zero resolution and colour counts.
func NewHeader(width, height int) Header {
	imageSize := uint32(RowStride(width) * height)
	return Header{
		File: FileHeader{
			Type:       TypeTag,
			FileSize:   HeaderSize + imageSize,
			DataOffset: HeaderSize,
		},
		Info: InfoHeader{
			HeaderSize:   InfoHeaderSize,
			Width:        int32(width),
			Height:       int32(height),
			Planes:       1,
			BitsPerPixel: BitsPerPixel,
			ImageSize:    imageSize,
		},
	}
}

// RowStride returns the padded size in bytes of one 24-bit row.
func RowStride(width int) int {
	return ((width*BitsPerPixel + 31) / 32) * 4
}

// RowPadding returns how many padding bytes follow each 24-bit row.
func RowPadding(width int) int {
	return RowStride(width) - width*bytesPerPixel
}

// TopDown reports whether the rows are stored top-to-bottom.
func (h Header) TopDown() bool {
	return h.Info.Height < 0
}

// Dimensions returns the absolute width and height.
func (h Header) Dimensions() (width, height int) {
	width = int(h.Info.Width)
	height = int(h.Info.Height)
	if height < 0 {
		height = -height
	}
	return width, height
}

// String renders every header field, one per line.
func (h Header) String() string {
	var sb strings.Builder
	sb.WriteString("BitMap = {\n")
	sb.WriteString("    Header = {\n")
	fmt.Fprintf(&sb, "        filetype = %d\n", h.File.Type)
	fmt.Fprintf(&sb, "        fileSize = %d\n", h.File.FileSize)
	fmt.Fprintf(&sb, "        reserved1 = %d\n", h.File.Reserved1)
	fmt.Fprintf(&sb, "        reserved2 = %d\n", h.File.Reserved2)
	fmt.Fprintf(&sb, "        bitmapOffset = %d\n", h.File.DataOffset)
	sb.WriteString("    }\n")
	fmt.Fprintf(&sb, "    headerSize = %d\n", h.Info.HeaderSize)
	fmt.Fprintf(&sb, "    width = %d\n", h.Info.Width)
	fmt.Fprintf(&sb, "    height = %d\n", h.Info.Height)
	fmt.Fprintf(&sb, "    bitPlanes = %d\n", h.Info.Planes)
	fmt.Fprintf(&sb, "    bitsPerPixel = %d\n", h.Info.BitsPerPixel)
	fmt.Fprintf(&sb, "    compression = %d\n", h.Info.Compression)
	fmt.Fprintf(&sb, "    sizeOfBitmap = %d\n", h.Info.ImageSize)
	fmt.Fprintf(&sb, "    horzResolution = %d\n", h.Info.XPixelsPerM)
	fmt.Fprintf(&sb, "    vertResolution = %d\n", h.Info.YPixelsPerM)
	fmt.Fprintf(&sb, "    colorsUsed = %d\n", h.Info.ColorsUsed)
	fmt.Fprintf(&sb, "    colorImportant = %d\n", h.Info.ColorsImportant)
	sb.WriteString("}")
	return sb.String()
}
