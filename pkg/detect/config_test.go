package detect

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigApply(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		check  func(t *testing.T, cfg Config)
	}{
		{
			name:   "empty map keeps defaults",
			params: map[string]any{},
			check: func(t *testing.T, cfg Config) {
				if cfg != DefaultConfig() {
					t.Errorf("config = %+v, want defaults", cfg)
				}
			},
		},
		{
			name: "json numbers decode as float64",
			params: map[string]any{
				"pupil_size_min": float64(20),
				"pupil_size_max": float64(120),
			},
			check: func(t *testing.T, cfg Config) {
				if cfg.PupilSizeMin != 20 || cfg.PupilSizeMax != 120 {
					t.Errorf("sizes = (%d, %d), want (20, 120)", cfg.PupilSizeMin, cfg.PupilSizeMax)
				}
			},
		},
		{
			name:   "bool parameter",
			params: map[string]any{"coarse_detection": true},
			check: func(t *testing.T, cfg Config) {
				if !cfg.CoarseDetection {
					t.Error("CoarseDetection not applied")
				}
			},
		},
		{
			name:   "unknown keys are ignored",
			params: map[string]any{"model": "2d", "pupil_size_min": float64(50)},
			check: func(t *testing.T, cfg Config) {
				if cfg.PupilSizeMin != 50 {
					t.Errorf("PupilSizeMin = %d, want 50", cfg.PupilSizeMin)
				}
			},
		},
		{
			name:   "wrongly typed value is ignored",
			params: map[string]any{"pupil_size_min": "tiny"},
			check: func(t *testing.T, cfg Config) {
				if cfg.PupilSizeMin != DefaultConfig().PupilSizeMin {
					t.Errorf("PupilSizeMin = %d, want default", cfg.PupilSizeMin)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, DefaultConfig().Apply(tt.params))
		})
	}
}

func TestLoadParamsMissingFile(t *testing.T) {
	params, err := LoadParams(filepath.Join(t.TempDir(), "settings.json"))
	if err != nil {
		t.Fatalf("LoadParams() error = %v", err)
	}
	if len(params) != 0 {
		t.Errorf("params = %v, want empty map", params)
	}
}

func TestLoadParams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"pupil_size_min": 30, "coarse_detection": true}`), 0o644); err != nil {
		t.Fatal(err)
	}

	params, err := LoadParams(path)
	if err != nil {
		t.Fatalf("LoadParams() error = %v", err)
	}

	cfg := DefaultConfig().Apply(params)
	if cfg.PupilSizeMin != 30 {
		t.Errorf("PupilSizeMin = %d, want 30", cfg.PupilSizeMin)
	}
	if !cfg.CoarseDetection {
		t.Error("CoarseDetection not applied")
	}
}

func TestLoadParamsInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadParams(path); err == nil {
		t.Error("LoadParams() with invalid JSON should fail")
	}
}
