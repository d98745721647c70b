// Package config provides environment-driven configuration for the
// preview daemon.
package config

import (
	"github.com/caarlos0/env/v11"
)

// Config holds all tunable settings for previewd. Every field can be
// overridden through its environment variable.
type Config struct {
	// SourceURL is the websocket endpoint publishing tagged eye frames.
	SourceURL string `env:"PREVIEW_SOURCE_URL" envDefault:"ws://127.0.0.1:8154/frames"`

	// Folder is the destination directory for sampled preview images.
	Folder string `env:"PREVIEW_FOLDER" envDefault:"preview"`

	// FrameInterval is the sampling stride: one out of this many
	// observed frames is persisted per source.
	FrameInterval int `env:"PREVIEW_FRAME_INTERVAL" envDefault:"1200"`

	// FrameFormat is the persisted image format name: JPEG, PNG or BMP.
	FrameFormat string `env:"PREVIEW_FRAME_FORMAT" envDefault:"JPEG"`

	// DetectorConfigPath points to an optional JSON file with detector
	// parameter overrides. A missing file means defaults.
	DetectorConfigPath string `env:"PREVIEW_DETECTOR_CONFIG" envDefault:"user_settings_preview.json"`

	// StopTimeoutSec bounds how long a stop request waits for the
	// worker to exit before giving up.
	StopTimeoutSec int `env:"PREVIEW_STOP_TIMEOUT_S" envDefault:"3"`

	ListenPort  int    `env:"PREVIEW_LISTEN_PORT"  envDefault:"8090"`
	MetricsPort int    `env:"PREVIEW_METRICS_PORT" envDefault:"9091"`
	LogLevel    string `env:"PREVIEW_LOG_LEVEL"    envDefault:"info"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
