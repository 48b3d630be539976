// Package validation verifies a finished shot catalog against its output
// directory and source video.
package validation

import (
	"github.com/disintegration/imaging"
)

// ImageInspector reads saved shot images. The interface lets validation run
// against fixtures without touching disk.
type ImageInspector interface {
	// Dimensions decodes the image at path and returns its size.
	Dimensions(path string) (width, height int, err error)
}

// DefaultInspector fully decodes images with imaging.
type DefaultInspector struct{}

// NewDefaultInspector creates a new DefaultInspector.
func NewDefaultInspector() *DefaultInspector {
	return &DefaultInspector{}
}

func (DefaultInspector) Dimensions(path string) (int, int, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return 0, 0, err
	}
	b := img.Bounds()
	return b.Dx(), b.Dy(), nil
}
