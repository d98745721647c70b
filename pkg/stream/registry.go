package stream

import (
	"fmt"

	"github.com/eyetrace/preview/internal/log"
	"github.com/eyetrace/preview/pkg/detect"
	"github.com/eyetrace/preview/pkg/preview"
)

// Config holds the shared settings for all accumulators of one run.
type Config struct {
	// Dir is the destination directory for preview images.
	Dir string

	// Every is the sampling stride applied to each source.
	Every int

	// Format is the persisted image format.
	Format preview.Format

	// NewDetector builds the detector for a newly seen source. Each
	// accumulator owns its own detector instance.
	NewDetector func() (detect.Detector, error)
}

// Registry demultiplexes tagged payloads to per-source accumulators,
// creating them lazily on first sight of a source. The frame size of a
// source is seeded from its first payload and assumed invariant for
// the run; it is not re-validated afterwards.
type Registry struct {
	config  Config
	streams map[int]*Accumulator
}

// NewRegistry creates an empty registry. The worker loop is
// single-threaded, so the registry needs no locking.
func NewRegistry(cfg Config) *Registry {
	return &Registry{
		config:  cfg,
		streams: make(map[int]*Accumulator),
	}
}

// Route delivers one payload to the accumulator for eye, creating it
// if this is the first payload for that source. It reports whether a
// record was persisted.
func (r *Registry) Route(eye int, p Payload) (bool, error) {
	acc, ok := r.streams[eye]
	if !ok {
		detector, err := r.config.NewDetector()
		if err != nil {
			return false, fmt.Errorf("stream: creating detector for eye%d: %w", eye, err)
		}
		acc = NewAccumulator(eye, r.config.Every, r.config.Dir, p.Width, p.Height, r.config.Format, detector)
		r.streams[eye] = acc
		log.Info("new eye stream", "eye", eye, "width", p.Width, "height", p.Height)
	}
	return acc.Observe(p)
}

// Streams returns how many sources have been seen.
func (r *Registry) Streams() int {
	return len(r.streams)
}

// Close releases every accumulator. The registry is unusable after.
func (r *Registry) Close() error {
	var first error
	for _, acc := range r.streams {
		if err := acc.Close(); err != nil && first == nil {
			first = err
		}
	}
	r.streams = make(map[int]*Accumulator)
	return first
}
