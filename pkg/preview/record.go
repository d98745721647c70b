// Package preview persists sampled eye frames as image files whose
// names carry the record metadata, and reconstructs those records by
// parsing a directory listing. The file name is the only index.
package preview

import (
	"fmt"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"
)

// Format is the image format of an exported frame. Its value is the
// file extension.
type Format string

const (
	JPEG Format = "jpg"
	PNG  Format = "png"
	BMP  Format = "bmp"
)

// String returns the file extension for the format.
func (f Format) String() string {
	return string(f)
}

// UnknownFormatError reports a file extension outside the supported
// set.
type UnknownFormatError struct {
	Extension string
}

// Error implements the error interface.
func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("preview: unknown image extension %q", e.Extension)
}

// FormatFromExtension maps a bare extension ("jpg") to its Format.
func FormatFromExtension(ext string) (Format, error) {
	switch Format(ext) {
	case JPEG, PNG, BMP:
		return Format(ext), nil
	}
	return "", &UnknownFormatError{Extension: ext}
}

// ParseFormat maps a format name ("JPEG", case-insensitive) to its
// Format. Used for configuration values.
func ParseFormat(name string) (Format, error) {
	switch strings.ToUpper(name) {
	case "JPEG":
		return JPEG, nil
	case "PNG":
		return PNG, nil
	case "BMP":
		return BMP, nil
	}
	return "", fmt.Errorf("preview: unknown format name %q", name)
}

// Record is the metadata of one persisted preview frame. Identity is
// (Eye, Frame); uniqueness comes from the monotonic counter of the
// accumulator that produced it.
type Record struct {
	// Eye is the source identifier of the eye stream.
	Eye int

	// Frame is the observation counter value at which this frame was
	// sampled. Strictly increasing within one source.
	Frame int

	// Confidence is the detector confidence in [0,1], persisted at
	// 4-decimal precision.
	Confidence float64

	Format Format
}

// Save writes the color image for this record into dir under the
// encoded file name. Whole-file write, never appended or rewritten.
func (r Record) Save(dir string, img gocv.Mat) error {
	path := filepath.Join(dir, r.FileName())
	if ok := gocv.IMWrite(path, img); !ok {
		return fmt.Errorf("preview: writing %q failed", path)
	}
	return nil
}

// Load reads the color image for this record back from dir.
func (r Record) Load(dir string) (gocv.Mat, error) {
	path := filepath.Join(dir, r.FileName())
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		img.Close()
		return gocv.Mat{}, fmt.Errorf("preview: reading %q failed", path)
	}
	return img, nil
}
