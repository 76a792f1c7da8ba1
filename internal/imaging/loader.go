package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"github.com/ironsheep/map-shapes-mcp/internal/bitmap"
)

// MapInfo contains metadata about a loaded map file.
type MapInfo struct {
	// Width is the map width in pixels.
	Width int `json:"width"`

	// Height is the map height in pixels.
	Height int `json:"height"`

	// Format is "bmp", "png", "jpeg", "gif", "webp", "tiff" or "unknown",
	// by file extension.
	Format string `json:"format"`

	// BitsPerPixel is taken from the bitmap header; 0 for other formats.
	BitsPerPixel int `json:"bits_per_pixel,omitempty"`

	// RowPadding is the number of padding bytes per stored bitmap row.
	RowPadding int `json:"row_padding,omitempty"`

	// Diagnostics lists non-fatal decoder notes.
	Diagnostics []string `json:"diagnostics,omitempty"`

	// FileSizeBytes is the size of the file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

type cacheEntry struct {
	grid *PixelGrid
	info MapInfo
}

// ImageCache provides thread-safe caching of decoded maps keyed by path.
//
// Once a map is loaded, later Load calls for the same path return the same
// *PixelGrid without touching the disk. Entries stay until Evict or Clear.
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	grid, err := cache.Load("/path/to/provinces.bmp")
//	if err != nil {
//	    log.Fatal(err)
//	}
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]*cacheEntry
}

// NewImageCache creates and initializes a new empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]*cacheEntry),
	}
}

// Load returns the grid for path, decoding the file on first use.
//
// ".bmp" files are decoded with the bitmap package; everything else goes
// through image.Decode (PNG, JPEG and GIF are registered).
func (c *ImageCache) Load(path string) (*PixelGrid, error) {
	e, err := c.load(path)
	if err != nil {
		return nil, err
	}
	return e.grid, nil
}

// Info returns metadata for path, decoding the file on first use.
func (c *ImageCache) Info(path string) (*MapInfo, error) {
	e, err := c.load(path)
	if err != nil {
		return nil, err
	}
	info := e.info
	return &info, nil
}

func (c *ImageCache) load(path string) (*cacheEntry, error) {
	c.mu.RLock()
	if e, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return e, nil
	}
	c.mu.RUnlock()

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	e := &cacheEntry{info: MapInfo{Format: formatOf(path), FileSizeBytes: stat.Size()}}

	if e.info.Format == "bmp" {
		bm, err := bitmap.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image: %w", err)
		}
		if e.grid, err = FromBitmap(bm); err != nil {
			return nil, err
		}
		e.info.BitsPerPixel = int(bm.Header.Info.BitsPerPixel)
		e.info.RowPadding = bitmap.RowPadding(bm.Width)
		e.info.Diagnostics = bm.Diagnostics
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open image: %w", err)
		}
		defer f.Close()

		img, _, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image: %w", err)
		}
		if e.grid, err = FromImage(img); err != nil {
			return nil, err
		}
	}
	e.info.Width = e.grid.Width()
	e.info.Height = e.grid.Height()

	c.mu.Lock()
	c.images[path] = e
	c.mu.Unlock()

	return e, nil
}

// Clear removes every entry from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]*cacheEntry)
	c.mu.Unlock()
}

// Evict removes the entry for path. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bmp":
		return "bmp"
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	case ".webp":
		return "webp"
	case ".tif", ".tiff":
		return "tiff"
	}
	return "unknown"
}
