// Package detect provides 2D pupil detection on grayscale eye frames.
package detect

import (
	"errors"
	"image"

	"gocv.io/x/gocv"
)

// ErrEmptyFrame is returned when detection is invoked on an empty mat.
var ErrEmptyFrame = errors.New("detect: empty input frame")

// Ellipse is the fitted pupil geometry in pixel coordinates.
type Ellipse struct {
	Center image.Point
	Axes   image.Point
	Angle  float64
}

// Result is the outcome of one detection. Confidence is 0 when no
// pupil candidate was found; the ellipse is only meaningful for a
// non-zero confidence.
type Result struct {
	Confidence float64
	Ellipse    Ellipse
}

// Detector finds a pupil in a grayscale frame within a region of
// interest.
type Detector interface {
	// Detect runs detection on the grayscale image restricted to roi.
	Detect(gray gocv.Mat, roi image.Rectangle) (Result, error)

	// Close releases resources
	Close() error
}
