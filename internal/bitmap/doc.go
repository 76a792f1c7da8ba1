// Package bitmap reads and writes the uncompressed 24-bit BMP container used
// for hand-drawn province maps.
//
// # Layout
//
// A file is a 14 byte file header, a 40 byte info header and the pixel
// array. All integers are little-endian. The pixel array stores rows
// bottom-to-top in B-G-R order, each row padded to a 4 byte boundary.
//
// # Internal representation
//
// Decode returns pixels the way the rest of the module wants them: rows
// top-to-bottom, R-G-B order, no padding (3*Width bytes per row). Encode
// performs the inverse transform. A negative height in the info header marks
// a file that is already stored top-to-bottom; it is honoured on decode.
//
// # Errors
//
//   - ErrTruncatedHeader: the stream ended before every header field was read
//   - ErrInvalidFormat: missing "BM" tag or impossible dimensions
//   - ErrUnsupported: compressed data or a bit depth other than 24
//   - ErrTruncatedPixelData: fewer pixel bytes than the header promises
//
// Rows whose bit width is not a multiple of 32 are legal; Decode notes them as
// a diagnostic rather than an error.
package bitmap
