package stream

import (
	"fmt"
	"image"
	"strconv"

	"gocv.io/x/gocv"

	"github.com/eyetrace/preview/internal/metrics"
	"github.com/eyetrace/preview/pkg/detect"
	"github.com/eyetrace/preview/pkg/preview"
)

// Accumulator counts the frames of one eye stream and promotes every
// Nth one to a persisted preview record. The frame size is fixed at
// creation; payloads are interpreted against it.
type Accumulator struct {
	eye      int
	every    int
	dir      string
	format   preview.Format
	width    int
	height   int
	detector detect.Detector

	counter int
	label   string
}

// NewAccumulator creates the accumulator for one eye stream. every is
// the sampling stride (>= 1); width and height come from the first
// payload seen for the source.
func NewAccumulator(eye, every int, dir string, width, height int, format preview.Format, detector detect.Detector) *Accumulator {
	if every < 1 {
		every = 1
	}
	return &Accumulator{
		eye:      eye,
		every:    every,
		dir:      dir,
		format:   format,
		width:    width,
		height:   height,
		detector: detector,
		label:    strconv.Itoa(eye),
	}
}

// Counter returns how many payloads have been observed so far.
func (a *Accumulator) Counter() int {
	return a.counter
}

// Observe counts one payload and, on every Nth call, decodes it, runs
// detection and persists the frame. It reports whether a record was
// added. Errors are fatal to the stream: no file is written and the
// counter state should be considered final.
func (a *Accumulator) Observe(p Payload) (bool, error) {
	a.counter++
	metrics.FramesObserved.WithLabelValues(a.label).Inc()
	if a.counter%a.every != 0 {
		return false, nil
	}

	added, err := a.process(p)
	if err != nil {
		metrics.FrameFailures.Inc()
		return false, err
	}
	if added {
		metrics.FramesSampled.WithLabelValues(a.label).Inc()
	}
	return added, nil
}

func (a *Accumulator) process(p Payload) (bool, error) {
	color, gray, err := a.decode(p)
	if err != nil {
		return false, err
	}
	defer color.Close()
	defer gray.Close()

	// Detection wants grayscale with a full-frame region of interest;
	// the geometry is only used by the visualization path, not here.
	result, err := a.detector.Detect(gray, image.Rect(0, 0, a.width, a.height))
	if err != nil {
		return false, fmt.Errorf("stream: detecting on eye%d frame %d: %w", a.eye, a.counter, err)
	}

	record := preview.Record{
		Eye:        a.eye,
		Frame:      a.counter,
		Confidence: result.Confidence,
		Format:     a.format,
	}
	if err := record.Save(a.dir, color); err != nil {
		return false, err
	}
	return true, nil
}

// decode reconstructs both a color and a grayscale view from the raw
// payload bytes. The caller owns both mats.
func (a *Accumulator) decode(p Payload) (color, gray gocv.Mat, err error) {
	switch p.PixelFormat {
	case PixelFormatJPEG:
		color, err = gocv.IMDecode(p.Data, gocv.IMReadColor)
		if err != nil {
			return gocv.Mat{}, gocv.Mat{}, fmt.Errorf("stream: decompressing jpeg payload: %w", err)
		}
		if color.Empty() {
			color.Close()
			return gocv.Mat{}, gocv.Mat{}, fmt.Errorf("stream: jpeg payload decompressed to an empty frame")
		}
		gray = gocv.NewMat()
		gocv.CvtColor(color, &gray, gocv.ColorBGRToGray)

	case PixelFormatGray:
		want := a.width * a.height
		if len(p.Data) != want {
			return gocv.Mat{}, gocv.Mat{}, &SizeMismatchError{Got: len(p.Data), Want: want}
		}
		// The transport reuses its buffer; copy before wrapping.
		buf := make([]byte, len(p.Data))
		copy(buf, p.Data)
		gray, err = gocv.NewMatFromBytes(a.height, a.width, gocv.MatTypeCV8U, buf)
		if err != nil {
			return gocv.Mat{}, gocv.Mat{}, fmt.Errorf("stream: wrapping gray payload: %w", err)
		}
		color = gocv.NewMat()
		gocv.CvtColor(gray, &color, gocv.ColorGrayToBGR)

	case PixelFormatBGR:
		want := a.width * a.height * 3
		if len(p.Data) != want {
			return gocv.Mat{}, gocv.Mat{}, &SizeMismatchError{Got: len(p.Data), Want: want}
		}
		buf := make([]byte, len(p.Data))
		copy(buf, p.Data)
		color, err = gocv.NewMatFromBytes(a.height, a.width, gocv.MatTypeCV8UC3, buf)
		if err != nil {
			return gocv.Mat{}, gocv.Mat{}, fmt.Errorf("stream: wrapping bgr payload: %w", err)
		}
		gray = gocv.NewMat()
		gocv.CvtColor(color, &gray, gocv.ColorBGRToGray)

	default:
		return gocv.Mat{}, gocv.Mat{}, fmt.Errorf("%w %q", ErrUnsupportedFormat, p.PixelFormat)
	}
	return color, gray, nil
}

// Close releases the accumulator's detector.
func (a *Accumulator) Close() error {
	return a.detector.Close()
}
