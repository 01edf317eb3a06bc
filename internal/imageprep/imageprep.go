// Package imageprep turns a raster image into the inverted, bottom-up
// grayscale grid the heightfield builder consumes.
package imageprep

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrImageNotFound is returned when the path does not resolve to a readable file
	ErrImageNotFound = errors.New("image not found")
	// ErrImageDecode is returned for unsupported, corrupt or too small images
	ErrImageDecode = errors.New("image decode error")
)

// DefaultMaxDimension is the largest side accepted without downscaling
const DefaultMaxDimension = 2000

// Grid is a prepared intensity grid. Row 0 is the bottom row of the
// printed panel and every value is already inverted.
type Grid struct {
	Width, Height int
	pix           []uint8
}

// NewGrid wraps already prepared intensities laid out row by row, bottom row first
func NewGrid(width, height int, pix []uint8) (*Grid, error) {
	if width < 2 || height < 2 {
		return nil, fmt.Errorf("%w: need at least 2x2 pixels, got %dx%d", ErrImageDecode, width, height)
	}
	if len(pix) != width*height {
		return nil, fmt.Errorf("grid data has %d values, want %d", len(pix), width*height)
	}
	return &Grid{Width: width, Height: height, pix: pix}, nil
}

// At returns the prepared intensity at column x, row y
func (g *Grid) At(x, y int) uint8 {
	return g.pix[y*g.Width+x]
}

// Options controls how an image is prepared
type Options struct {
	// MaxDimension is the largest accepted side in pixels (0 means DefaultMaxDimension)
	MaxDimension int
	// Confirm is asked whether an oversized image should be downscaled.
	// A nil Confirm keeps the full resolution.
	Confirm func(width, height, limit int) bool
}

// Result describes the outcome of a preparation
type Result struct {
	Grid *Grid
	// SourceWidth and SourceHeight are the dimensions before any downscaling
	SourceWidth, SourceHeight int
	Downscaled                bool
}

// Load opens, decodes and prepares the image at path
func Load(path string, opts Options) (*Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrImageNotFound, path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrImageNotFound, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrImageNotFound, path)
	}

	return Decode(file, opts)
}

// Decode prepares an image read from r
func Decode(r io.Reader, opts Options) (*Result, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}

	return Prepare(img, opts)
}

// Prepare downscales (if accepted), converts to gray, inverts and flips img
func Prepare(img image.Image, opts Options) (*Result, error) {
	bounds := img.Bounds()
	result := &Result{
		SourceWidth:  bounds.Dx(),
		SourceHeight: bounds.Dy(),
	}

	limit := opts.MaxDimension
	if limit <= 0 {
		limit = DefaultMaxDimension
	}

	if bounds.Dx() > limit || bounds.Dy() > limit {
		if opts.Confirm != nil && opts.Confirm(bounds.Dx(), bounds.Dy(), limit) {
			img = Downscale(img, limit)
			result.Downscaled = true
		}
	}

	gray := toGray(img)
	grid, err := invertAndFlip(gray)
	if err != nil {
		return nil, err
	}
	result.Grid = grid
	return result, nil
}

// FitWithin returns the proportional size whose longer side equals limit
func FitWithin(width, height, limit int) (int, int) {
	if width <= limit && height <= limit {
		return width, height
	}
	if width >= height {
		h := int(float64(height)*float64(limit)/float64(width) + 0.5)
		if h < 1 {
			h = 1
		}
		return limit, h
	}
	w := int(float64(width)*float64(limit)/float64(height) + 0.5)
	if w < 1 {
		w = 1
	}
	return w, limit
}

// Downscale resamples img so that its longer side equals limit
func Downscale(img image.Image, limit int) image.Image {
	bounds := img.Bounds()
	w, h := FitWithin(bounds.Dx(), bounds.Dy(), limit)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}

// toGray converts img to a single channel using the library's luma weights
func toGray(img image.Image) *image.Gray {
	if gray, ok := img.(*image.Gray); ok {
		return gray
	}
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(gray, gray.Bounds(), img, bounds.Min, draw.Src)
	return gray
}

// invertAndFlip stores 255-I with raw row H-1 becoming grid row 0
func invertAndFlip(gray *image.Gray) (*Grid, error) {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 2 || height < 2 {
		return nil, fmt.Errorf("%w: need at least 2x2 pixels, got %dx%d", ErrImageDecode, width, height)
	}

	pix := make([]uint8, width*height)
	for row := 0; row < height; row++ {
		y := height - 1 - row
		for x := 0; x < width; x++ {
			pix[y*width+x] = 255 - gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+row).Y
		}
	}
	return &Grid{Width: width, Height: height, pix: pix}, nil
}
