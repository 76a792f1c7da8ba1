// Package imaging provides the pixel-level view of a province map.
//
// This package holds the colour and coordinate types shared by the rest of
// the module, the read-only PixelGrid the shape detector scans, and the
// ImageCache that loads map files from disk once per path.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with the origin at the top-left corner:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//
// Point2D stores unsigned coordinates. Neighbour arithmetic that may step
// before (0,0) is done in int and must pass PixelGrid.InBounds before the grid
// is indexed.
//
// # Border Colour
//
// BorderColor (0,0,0) separates provinces in a hand-drawn map. It is never a
// valid province colour. ColorAt reports BorderColor for coordinates outside
// the grid, so absent neighbours and border pixels look the same to callers.
//
// # Input Formats
//
// BMP files are decoded with the bitmap package so that header diagnostics
// are preserved. PNG, JPEG and GIF files go through image.Decode and are
// normalised to RGBA before being copied into a grid.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. A PixelGrid is never mutated after
// construction and may be read from any number of goroutines.
package imaging
