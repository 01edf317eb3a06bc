package preconditions

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/philipparndt/golitho/internal/imageprep"
	"github.com/philipparndt/golitho/internal/stl"
)

// ErrOutputExists is returned when the output file exists and may not be replaced
var ErrOutputExists = errors.New("output file exists")

// imageExtensions lists the file types the image decoders understand
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// Check verifies that input can be read and output can be written
func Check(input, output string) error {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"Input", func() error { return ValidateInput(input) }},
		{"Output", func() error { return ValidateOutputPath(output) }},
	}

	for _, check := range checks {
		if err := check.fn(); err != nil {
			return fmt.Errorf("%s: %w", check.name, err)
		}
	}

	return nil
}

// ValidateInput checks that the image exists, is a readable file and has a
// supported extension
func ValidateInput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: cannot access %s: %v", imageprep.ErrImageNotFound, path, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory, not a file", imageprep.ErrImageNotFound, path)
	}

	if !IsImageFile(path) {
		return fmt.Errorf("%w: %s is not a supported image (png, jpeg, gif, bmp, tiff, webp)", imageprep.ErrImageDecode, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: cannot read %s: %v", imageprep.ErrImageNotFound, path, err)
	}
	file.Close()

	return nil
}

// IsImageFile reports whether path has a supported image extension
func IsImageFile(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// ValidateOutputPath checks that the directory of path exists and is
// writable. Failures wrap stl.ErrWrite.
func ValidateOutputPath(path string) error {
	dir := filepath.Dir(path)

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: output directory %s does not exist", stl.ErrWrite, dir)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", stl.ErrWrite, dir)
	}
	if info.Mode()&0o200 == 0 {
		return fmt.Errorf("%w: output directory %s is not writable", stl.ErrWrite, dir)
	}

	if existing, err := os.Stat(path); err == nil && existing.IsDir() {
		return fmt.Errorf("%w: %s is a directory", stl.ErrWrite, path)
	}

	return nil
}

// CheckOverwrite decides whether an existing output file may be replaced.
// Missing files always pass; otherwise always allows it and confirm is asked.
// A nil confirm declines.
func CheckOverwrite(path string, always bool, confirm func(path string) bool) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if always {
		return nil
	}
	if confirm != nil && confirm(path) {
		return nil
	}
	return fmt.Errorf("%w: %s (use --always-overwrite to replace it)", ErrOutputExists, path)
}
