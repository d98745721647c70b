package detect

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds the tunable parameters of the pupil detector.
type Config struct {
	// PupilSizeMin and PupilSizeMax bound the accepted major axis of a
	// pupil candidate, in pixels.
	PupilSizeMin int
	PupilSizeMax int

	// CoarseDetection skips fine contour scoring and accepts the first
	// size-matching candidate.
	CoarseDetection bool

	// IntensityRange is the offset above the darkest pixel used as the
	// pupil threshold.
	IntensityRange int

	// BlurKernel is the median blur kernel size. Must be odd.
	BlurKernel int
}

// DefaultConfig returns the recommended detector parameters.
func DefaultConfig() Config {
	return Config{
		PupilSizeMin:    40,
		PupilSizeMax:    200,
		CoarseDetection: false,
		IntensityRange:  23,
		BlurKernel:      5,
	}
}

// Apply overlays a parameter map onto the config and returns the
// result. Unknown keys are ignored so callers can share one settings
// file across detector versions.
func (c Config) Apply(params map[string]any) Config {
	for key, value := range params {
		switch key {
		case "pupil_size_min":
			if v, ok := toInt(value); ok {
				c.PupilSizeMin = v
			}
		case "pupil_size_max":
			if v, ok := toInt(value); ok {
				c.PupilSizeMax = v
			}
		case "coarse_detection":
			if v, ok := value.(bool); ok {
				c.CoarseDetection = v
			}
		case "intensity_range":
			if v, ok := toInt(value); ok {
				c.IntensityRange = v
			}
		case "blur_kernel":
			if v, ok := toInt(value); ok {
				c.BlurKernel = v
			}
		}
	}
	return c
}

// LoadParams reads a JSON detector settings file. A missing file is
// not an error and yields an empty map.
func LoadParams(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("detect: reading settings %q: %w", path, err)
	}

	params := map[string]any{}
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("detect: invalid settings JSON in %q: %w", path, err)
	}
	return params, nil
}

// toInt converts JSON-decoded numbers (float64) and plain ints.
func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}
