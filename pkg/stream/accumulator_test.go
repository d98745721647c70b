package stream

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"gocv.io/x/gocv"

	"github.com/eyetrace/preview/pkg/detect"
	"github.com/eyetrace/preview/pkg/preview"
)

// stubDetector returns a fixed confidence without touching the frame.
type stubDetector struct {
	confidence float64
}

func (d stubDetector) Detect(gray gocv.Mat, roi image.Rectangle) (detect.Result, error) {
	return detect.Result{Confidence: d.confidence}, nil
}

func (d stubDetector) Close() error { return nil }

func grayPayload(width, height int) Payload {
	return Payload{
		Width:       width,
		Height:      height,
		PixelFormat: PixelFormatGray,
		Data:        make([]byte, width*height),
	}
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func TestObserveSamplesEveryNth(t *testing.T) {
	dir := t.TempDir()
	acc := NewAccumulator(7, 3, dir, 64, 48, preview.JPEG, stubDetector{confidence: 0.5})

	added := 0
	for i := 0; i < 9; i++ {
		ok, err := acc.Observe(grayPayload(64, 48))
		if err != nil {
			t.Fatalf("Observe() error = %v", err)
		}
		if ok {
			added++
		}
	}

	if added != 3 {
		t.Errorf("added %d records after 9 payloads at interval 3, want 3", added)
	}

	// Sequence numbers are the counter values of the sampled calls.
	for _, name := range []string{
		"eye7_frame3_confidence0.5000.jpg",
		"eye7_frame6_confidence0.5000.jpg",
		"eye7_frame9_confidence0.5000.jpg",
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected file %s: %v", name, err)
		}
	}
}

func TestObserveSkipsBetweenSamples(t *testing.T) {
	dir := t.TempDir()
	acc := NewAccumulator(0, 1000, dir, 64, 48, preview.JPEG, stubDetector{})

	ok, err := acc.Observe(grayPayload(64, 48))
	if err != nil {
		t.Fatalf("Observe() error = %v", err)
	}
	if ok {
		t.Error("Observe() added a record below the sampling interval")
	}
	if got := len(listFiles(t, dir)); got != 0 {
		t.Errorf("directory has %d files, want 0", got)
	}
}

func TestObserveUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	acc := NewAccumulator(0, 1, dir, 64, 48, preview.JPEG, stubDetector{})

	p := grayPayload(64, 48)
	p.PixelFormat = "rgb565"

	_, err := acc.Observe(p)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Observe() error = %v, want ErrUnsupportedFormat", err)
	}
	if got := len(listFiles(t, dir)); got != 0 {
		t.Errorf("directory has %d files after a failed frame, want 0", got)
	}
}

func TestObserveSizeMismatch(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		length  int
		want    int
	}{
		{name: "gray too short", format: PixelFormatGray, length: 100, want: 64 * 48},
		{name: "gray too long", format: PixelFormatGray, length: 64*48 + 1, want: 64 * 48},
		{name: "bgr wrong length", format: PixelFormatBGR, length: 64 * 48, want: 64 * 48 * 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			acc := NewAccumulator(0, 1, dir, 64, 48, preview.JPEG, stubDetector{})

			_, err := acc.Observe(Payload{
				Width:       64,
				Height:      48,
				PixelFormat: tt.format,
				Data:        make([]byte, tt.length),
			})

			var sizeErr *SizeMismatchError
			if !errors.As(err, &sizeErr) {
				t.Fatalf("Observe() error = %v, want SizeMismatchError", err)
			}
			if sizeErr.Got != tt.length || sizeErr.Want != tt.want {
				t.Errorf("SizeMismatchError = {Got: %d, Want: %d}, want {Got: %d, Want: %d}",
					sizeErr.Got, sizeErr.Want, tt.length, tt.want)
			}
			if got := len(listFiles(t, dir)); got != 0 {
				t.Errorf("directory has %d files after a failed frame, want 0", got)
			}
		})
	}
}

func TestObserveCounterKeepsRunningAcrossFailures(t *testing.T) {
	dir := t.TempDir()
	acc := NewAccumulator(0, 2, dir, 64, 48, preview.JPEG, stubDetector{confidence: 0.25})

	acc.Observe(grayPayload(64, 48)) // frame 1, skipped

	bad := grayPayload(64, 48)
	bad.Data = bad.Data[:10]
	if _, err := acc.Observe(bad); err == nil { // frame 2, sampled but fails
		t.Fatal("Observe() with a short payload should fail")
	}

	if got := acc.Counter(); got != 2 {
		t.Errorf("Counter() = %d, want 2 (increments unconditionally)", got)
	}
}
