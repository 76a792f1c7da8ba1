package bitmap

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ironsheep/map-shapes-mcp/internal/logging"
)

var (
	// ErrTruncatedHeader means the stream ended before every header field
	// could be read.
	ErrTruncatedHeader = errors.New("bitmap: truncated header")

	// ErrTruncatedPixelData means the pixel array is shorter than the
	// header's dimensions require.
	ErrTruncatedPixelData = errors.New("bitmap: truncated pixel data")

	// ErrInvalidFormat means the data is not a bitmap or has impossible
	// dimensions.
	ErrInvalidFormat = errors.New("bitmap: invalid format")

	// ErrUnsupported means a valid bitmap uses a feature this package does
	// not read (compression, palettes, depths other than 24 bits).
	ErrUnsupported = errors.New("bitmap: unsupported bitmap")
)

// Bitmap is a decoded image.
type Bitmap struct {
	// Header is the header as read from the file.
	Header Header

	// Width and Height are the absolute image dimensions in pixels.
	Width  int
	Height int

	// Pix holds R-G-B triples, rows top-to-bottom, 3*Width bytes per row.
	Pix []byte

	// Diagnostics lists non-fatal observations made while decoding.
	Diagnostics []string
}

// Decode parses a bitmap held entirely in memory.
//
// Header fields are read in file order; if the data ends before any of them
// the error wraps ErrTruncatedHeader and names the missing field. Pixel data
// is read from the header's data offset using the padded row stride, flipped
// to top-to-bottom order and converted from B-G-R to R-G-B.
func Decode(data []byte) (*Bitmap, error) {
	r := bytes.NewReader(data)

	var h Header
	fields := []struct {
		name string
		ptr  interface{}
	}{
		{"filetype", &h.File.Type},
		{"fileSize", &h.File.FileSize},
		{"reserved1", &h.File.Reserved1},
		{"reserved2", &h.File.Reserved2},
		{"bitmapOffset", &h.File.DataOffset},
		{"headerSize", &h.Info.HeaderSize},
		{"width", &h.Info.Width},
		{"height", &h.Info.Height},
		{"bitPlanes", &h.Info.Planes},
		{"bitsPerPixel", &h.Info.BitsPerPixel},
		{"compression", &h.Info.Compression},
		{"sizeOfBitmap", &h.Info.ImageSize},
		{"horzResolution", &h.Info.XPixelsPerM},
		{"vertResolution", &h.Info.YPixelsPerM},
		{"colorsUsed", &h.Info.ColorsUsed},
		{"colorImportant", &h.Info.ColorsImportant},
	}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f.ptr); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("%w: missing field %s", ErrTruncatedHeader, f.name)
			}
			return nil, fmt.Errorf("bitmap: reading %s: %w", f.name, err)
		}
	}

	logging.Logger().Debug("decoded bitmap header\n" + h.String())

	if h.File.Type != TypeTag {
		return nil, fmt.Errorf("%w: file type tag 0x%04X", ErrInvalidFormat, h.File.Type)
	}
	if h.Info.Compression != 0 {
		return nil, fmt.Errorf("%w: compression %d", ErrUnsupported, h.Info.Compression)
	}
	if h.Info.BitsPerPixel != BitsPerPixel {
		return nil, fmt.Errorf("%w: %d bits per pixel", ErrUnsupported, h.Info.BitsPerPixel)
	}

	width, height := h.Dimensions()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidFormat, h.Info.Width, h.Info.Height)
	}

	if width > MaxDimension || height > MaxDimension {
		return nil, fmt.Errorf("%w: dimensions %dx%d exceed %d", ErrInvalidFormat, width, height, MaxDimension)
	}

	bm := &Bitmap{Header: h, Width: width, Height: height}

	if rowBits := width * BitsPerPixel; rowBits%32 != 0 {
		msg := fmt.Sprintf("bitmap width is not a multiple of 4; each row may contain up to %d padding bytes", RowPadding(width))
		bm.Diagnostics = append(bm.Diagnostics, msg)
		logging.Logger().Warn(msg, "width", width, "bits_per_pixel", BitsPerPixel)
	}

	stride := RowStride(width)
	rowBytes := width * bytesPerPixel
	offset := int(h.File.DataOffset)
	have := len(data) - offset
	if offset > len(data) {
		have = 0
	}
	// The final row's padding is not required to be present. Rows are
	// counted by division so a hostile header cannot overflow the size.
	if have < rowBytes || (have-rowBytes)/stride < height-1 {
		need := uint64(stride)*uint64(height-1) + uint64(rowBytes)
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncatedPixelData, need, offset, have)
	}

	src := data[offset:]
	bm.Pix = make([]byte, rowBytes*height)
	for y := 0; y < height; y++ {
		srcRow := height - 1 - y
		if h.TopDown() {
			srcRow = y
		}
		in := src[srcRow*stride : srcRow*stride+rowBytes]
		out := bm.Pix[y*rowBytes : (y+1)*rowBytes]
		for i := 0; i < rowBytes; i += bytesPerPixel {
			out[i] = in[i+2]
			out[i+1] = in[i+1]
			out[i+2] = in[i]
		}
	}

	return bm, nil
}

// ReadFile decodes the bitmap stored at path.
func ReadFile(path string) (*Bitmap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bitmap: %w", err)
	}
	return Decode(data)
}

// Encode writes a width x height image given as top-down R-G-B triples,
// synthesizing the header with NewHeader.
func Encode(width, height int, pix []byte) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidFormat, width, height)
	}
	return EncodeWithHeader(NewHeader(width, height), pix)
}

// EncodeWithHeader writes pix using an existing header, typically one that
// came from Decode. Reserved, resolution and colour-count fields are kept;
// size and offset fields are recomputed so the output is self-consistent.
// A negative height in h produces top-down rows.
func EncodeWithHeader(h Header, pix []byte) ([]byte, error) {
	width, height := h.Dimensions()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidFormat, h.Info.Width, h.Info.Height)
	}
	rowBytes := width * bytesPerPixel
	if len(pix) != rowBytes*height {
		return nil, fmt.Errorf("bitmap: pixel buffer has %d bytes, want %d for %dx%d", len(pix), rowBytes*height, width, height)
	}

	stride := RowStride(width)
	h.File.Type = TypeTag
	h.File.DataOffset = HeaderSize
	h.File.FileSize = uint32(HeaderSize + stride*height)
	h.Info.HeaderSize = InfoHeaderSize
	h.Info.Planes = 1
	h.Info.BitsPerPixel = BitsPerPixel
	h.Info.Compression = 0
	h.Info.ImageSize = uint32(stride * height)

	var buf bytes.Buffer
	buf.Grow(int(h.File.FileSize))
	if err := binary.Write(&buf, binary.LittleEndian, h.File); err != nil {
		return nil, fmt.Errorf("bitmap: writing file header: %w", err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, h.Info); err != nil {
		return nil, fmt.Errorf("bitmap: writing info header: %w", err)
	}

	row := make([]byte, stride)
	for i := 0; i < height; i++ {
		y := height - 1 - i
		if h.TopDown() {
			y = i
		}
		in := pix[y*rowBytes : (y+1)*rowBytes]
		for x := 0; x < rowBytes; x += bytesPerPixel {
			row[x] = in[x+2]
			row[x+1] = in[x+1]
			row[x+2] = in[x]
		}
		buf.Write(row)
	}

	return buf.Bytes(), nil
}

// Encode writes b back out using its own header.
func (b *Bitmap) Encode() ([]byte, error) {
	return EncodeWithHeader(b.Header, b.Pix)
}

// WriteFile encodes a width x height image and writes it to path.
func WriteFile(path string, width, height int, pix []byte) error {
	data, err := Encode(width, height, pix)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write bitmap: %w", err)
	}
	return nil
}
