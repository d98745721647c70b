package stream

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned when a payload announces a pixel
// format outside the supported set.
var ErrUnsupportedFormat = errors.New("stream: unsupported pixel format")

// SizeMismatchError reports a packed payload whose byte length does not
// match the expected frame dimensions.
type SizeMismatchError struct {
	Got  int
	Want int
}

// Error implements the error interface.
func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("stream: payload is %d bytes, expected %d for the frame size", e.Got, e.Want)
}
