package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ironsheep/map-shapes-mcp/internal/bitmap"
)

// createTestImage writes a solid PNG file and returns its path.
// The caller is responsible for removing the file.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	tmpFile, err := os.CreateTemp("", "test-image-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer tmpFile.Close()

	if err := png.Encode(tmpFile, img); err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to encode image: %v", err)
	}

	return tmpFile.Name()
}

// createTestBitmap writes a solid 24-bit BMP file under t.TempDir.
func createTestBitmap(t *testing.T, width, height int, c Color) string {
	t.Helper()
	pix := make([]byte, width*height*3)
	for i := 0; i < len(pix); i += 3 {
		pix[i], pix[i+1], pix[i+2] = c.R, c.G, c.B
	}
	path := filepath.Join(t.TempDir(), "map.bmp")
	if err := bitmap.WriteFile(path, width, height, pix); err != nil {
		t.Fatalf("failed to write bitmap: %v", err)
	}
	return path
}

func TestNewImageCache(t *testing.T) {
	cache := NewImageCache()
	if cache == nil {
		t.Fatal("NewImageCache returned nil")
	}
	if cache.images == nil {
		t.Fatal("NewImageCache did not initialize images map")
	}
}

func TestImageCache_LoadPNG(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 20, 10, color.RGBA{255, 0, 0, 255})
	defer os.Remove(imgPath)

	grid1, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if grid1.Width() != 20 || grid1.Height() != 10 {
		t.Errorf("unexpected dimensions: got %dx%d, want 20x10", grid1.Width(), grid1.Height())
	}
	if c := grid1.ColorAt(3, 3); c != (Color{255, 0, 0}) {
		t.Errorf("ColorAt = %v, want red", c)
	}

	grid2, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if grid1 != grid2 {
		t.Error("second Load did not return cached grid")
	}
}

func TestImageCache_LoadBitmap(t *testing.T) {
	cache := NewImageCache()
	path := createTestBitmap(t, 5, 3, Color{10, 200, 30})

	grid, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c := grid.ColorAt(4, 2); c != (Color{10, 200, 30}) {
		t.Errorf("ColorAt = %v, want (10,200,30)", c)
	}

	info, err := cache.Info(path)
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if info.Format != "bmp" {
		t.Errorf("Format: got %s, want bmp", info.Format)
	}
	if info.BitsPerPixel != 24 {
		t.Errorf("BitsPerPixel: got %d, want 24", info.BitsPerPixel)
	}
	if info.RowPadding != 1 {
		t.Errorf("RowPadding: got %d, want 1", info.RowPadding)
	}
	if len(info.Diagnostics) == 0 {
		t.Error("expected a padding diagnostic for width 5")
	}
	if info.Width != 5 || info.Height != 3 {
		t.Errorf("dimensions: got %dx%d, want 5x3", info.Width, info.Height)
	}
	if info.FileSizeBytes != int64(bitmap.HeaderSize+bitmap.RowStride(5)*3) {
		t.Errorf("FileSizeBytes: got %d", info.FileSizeBytes)
	}
}

func TestImageCache_Load_NonExistent(t *testing.T) {
	cache := NewImageCache()
	_, err := cache.Load("/nonexistent/path/to/map.bmp")
	if err == nil {
		t.Error("Load should fail for non-existent file")
	}
}

func TestImageCache_Load_InvalidImage(t *testing.T) {
	cache := NewImageCache()

	for _, pattern := range []string{"invalid-image-*.png", "invalid-image-*.bmp"} {
		tmpFile, err := os.CreateTemp("", pattern)
		if err != nil {
			t.Fatalf("failed to create temp file: %v", err)
		}
		tmpFile.WriteString("not an image")
		tmpFile.Close()
		defer os.Remove(tmpFile.Name())

		if _, err := cache.Load(tmpFile.Name()); err == nil {
			t.Errorf("Load should fail for invalid data in %s", tmpFile.Name())
		}
	}
}

func TestImageCache_Clear(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 5, 5, color.RGBA{0, 255, 0, 255})
	defer os.Remove(imgPath)

	if _, err := cache.Load(imgPath); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cache.Clear()

	cache.mu.RLock()
	count := len(cache.images)
	cache.mu.RUnlock()

	if count != 0 {
		t.Errorf("Clear did not empty cache: %d images remain", count)
	}
}

func TestImageCache_Evict(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 5, 5, color.RGBA{0, 0, 255, 255})
	defer os.Remove(imgPath)

	if _, err := cache.Load(imgPath); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cache.Evict(imgPath)

	cache.mu.RLock()
	_, exists := cache.images[imgPath]
	cache.mu.RUnlock()

	if exists {
		t.Error("Evict did not remove image from cache")
	}

	// Unknown paths are ignored.
	cache.Evict("/nonexistent/path")
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 16, 16, color.RGBA{128, 128, 128, 255})
	defer os.Remove(imgPath)

	var wg sync.WaitGroup
	errs := make(chan error, 20)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(imgPath); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load failed: %v", err)
	}
}

func TestFormatOf(t *testing.T) {
	tests := map[string]string{
		"a.bmp":  "bmp",
		"a.BMP":  "bmp",
		"a.png":  "png",
		"a.jpg":  "jpeg",
		"a.jpeg": "jpeg",
		"a.gif":  "gif",
		"a.webp": "webp",
		"a.tif":  "tiff",
		"a.tiff": "tiff",
		"a.tga":  "unknown",
	}
	for path, want := range tests {
		if got := formatOf(path); got != want {
			t.Errorf("formatOf(%q) = %q, want %q", path, got, want)
		}
	}
}
