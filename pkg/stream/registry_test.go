package stream

import (
	"testing"

	"github.com/eyetrace/preview/pkg/detect"
	"github.com/eyetrace/preview/pkg/preview"
)

func TestSourceID(t *testing.T) {
	tests := []struct {
		topic   string
		want    int
		wantErr bool
	}{
		{topic: "frame.eye.0", want: 0},
		{topic: "frame.eye.1", want: 1},
		{topic: "frame.eye.12", want: 12},
		{topic: "frame.eye", wantErr: true},
		{topic: "frame.eye.", wantErr: true},
		{topic: "frame.eye.left", wantErr: true},
		{topic: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			got, err := SourceID(tt.topic)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SourceID(%q) error = %v, wantErr %v", tt.topic, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("SourceID(%q) = %d, want %d", tt.topic, got, tt.want)
			}
		})
	}
}

func testRegistry(t *testing.T, every int) *Registry {
	t.Helper()
	return NewRegistry(Config{
		Dir:    t.TempDir(),
		Every:  every,
		Format: preview.JPEG,
		NewDetector: func() (detect.Detector, error) {
			return stubDetector{confidence: 0.5}, nil
		},
	})
}

func TestRouteCreatesStreamsLazily(t *testing.T) {
	reg := testRegistry(t, 2)
	defer reg.Close()

	if got := reg.Streams(); got != 0 {
		t.Fatalf("Streams() = %d before any payload, want 0", got)
	}

	reg.Route(0, grayPayload(64, 48))
	reg.Route(1, grayPayload(32, 24))
	reg.Route(0, grayPayload(64, 48))

	if got := reg.Streams(); got != 2 {
		t.Errorf("Streams() = %d, want 2", got)
	}
}

func TestRouteCountsPerSource(t *testing.T) {
	reg := testRegistry(t, 2)
	defer reg.Close()

	// Eye 0 reaches the interval, eye 1 does not.
	if added, _ := reg.Route(0, grayPayload(64, 48)); added {
		t.Error("first payload for eye 0 should be skipped")
	}
	added, err := reg.Route(0, grayPayload(64, 48))
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if !added {
		t.Error("second payload for eye 0 should be sampled")
	}

	if added, _ := reg.Route(1, grayPayload(64, 48)); added {
		t.Error("eye 1 counter must be independent of eye 0")
	}
}
