package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"golang.org/x/image/tiff"
)

// createInMemoryImage creates a uniformly colored NRGBA image.
func createInMemoryImage(width, height int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createGradientImage creates an image whose red channel encodes x and green
// channel encodes y, so any crop can be located by its pixels.
func createGradientImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x), uint8(y), 0, 255})
		}
	}
	return img
}

// createTestImage writes a uniformly colored PNG under t.TempDir and returns
// its path.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scan.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, createInMemoryImage(width, height, c)); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func TestNewImageCache(t *testing.T) {
	cache := NewImageCache()
	if cache == nil {
		t.Fatal("NewImageCache returned nil")
	}
	if cache.Len() != 0 {
		t.Fatalf("new cache has %d entries", cache.Len())
	}
}

func TestImageCache_Load(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 100, 80, color.RGBA{255, 0, 0, 255})

	img1, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	bounds := img1.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 80 {
		t.Errorf("unexpected dimensions: got %dx%d, want 100x80", bounds.Dx(), bounds.Dy())
	}

	img2, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if img1 != img2 {
		t.Error("second Load did not return cached image")
	}
}

func TestImageCache_LoadTIFF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.tif")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	if err := tiff.Encode(f, createGradientImage(64, 48), nil); err != nil {
		t.Fatalf("failed to encode tiff: %v", err)
	}
	f.Close()

	img, err := NewImageCache().Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := img.Bounds().Size(); got != image.Pt(64, 48) {
		t.Errorf("size: got %v, want (64,48)", got)
	}
	r, g, _, _ := img.At(10, 20).RGBA()
	if r>>8 != 10 || g>>8 != 20 {
		t.Errorf("pixel (10,20): got r=%d g=%d", r>>8, g>>8)
	}
}

func TestImageCache_Load_Errors(t *testing.T) {
	invalid := filepath.Join(t.TempDir(), "invalid.png")
	if err := os.WriteFile(invalid, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing", "/nonexistent/path/to/scan.png"},
		{"invalid data", invalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewImageCache()
			if _, err := cache.Load(tt.path); err == nil {
				t.Error("Load should fail")
			}
			if cache.Len() != 0 {
				t.Error("failed load must not be cached")
			}
		})
	}
}

func TestImageCache_PutEvictClear(t *testing.T) {
	cache := NewImageCache()
	cache.Put("merged", createInMemoryImage(4, 4, color.White))
	cache.Put("other", createInMemoryImage(4, 4, color.Black))

	img, err := cache.Load("merged")
	if err != nil {
		t.Fatalf("Load of stored image failed: %v", err)
	}
	if img.Bounds().Dx() != 4 {
		t.Errorf("stored image width: got %d, want 4", img.Bounds().Dx())
	}

	cache.Evict("merged")
	cache.Evict("never-stored")
	if cache.Len() != 1 {
		t.Errorf("after Evict: got %d entries, want 1", cache.Len())
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Clear did not empty cache: %d images remain", cache.Len())
	}
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 50, 50, color.RGBA{128, 128, 128, 255})

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
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
		t.Errorf("concurrent Load error: %v", err)
	}
}

func TestLoadImageInfo(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 200, 150, color.RGBA{255, 128, 64, 255})

	info, err := LoadImageInfo(cache, imgPath)
	if err != nil {
		t.Fatalf("LoadImageInfo failed: %v", err)
	}
	if info.Width != 200 || info.Height != 150 {
		t.Errorf("dimensions: got %dx%d, want 200x150", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("Format: got %s, want png", info.Format)
	}
	if info.FileSizeBytes <= 0 {
		t.Error("FileSizeBytes should be positive")
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path   string
		format string
	}{
		{"a.png", "png"},
		{"a.jpg", "jpeg"},
		{"a.JPEG", "jpeg"},
		{"a.gif", "gif"},
		{"a.bmp", "bmp"},
		{"a.tif", "tiff"},
		{"a.TIFF", "tiff"},
		{"a.xyz", "unknown"},
		{"noext", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := FormatFromPath(tt.path); got != tt.format {
				t.Errorf("FormatFromPath(%q): got %s, want %s", tt.path, got, tt.format)
			}
		})
	}
}

func TestGetDimensions(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 300, 200, color.RGBA{100, 100, 100, 255})

	dims, err := GetDimensions(cache, imgPath)
	if err != nil {
		t.Fatalf("GetDimensions failed: %v", err)
	}
	if dims.Width != 300 || dims.Height != 200 {
		t.Errorf("dimensions: got %dx%d, want 300x200", dims.Width, dims.Height)
	}

	if _, err := GetDimensions(cache, "/nonexistent/image.png"); err == nil {
		t.Error("GetDimensions should fail for non-existent file")
	}
}
