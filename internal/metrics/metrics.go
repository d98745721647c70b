// Package metrics exposes Prometheus counters for the frame sampling
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesObserved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "preview_frames_observed_total",
		Help: "Total frames observed per eye stream, sampled or not",
	}, []string{"eye"})

	FramesSampled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "preview_frames_sampled_total",
		Help: "Total frames promoted to persisted preview records, per eye",
	}, []string{"eye"})

	FrameFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "preview_frame_failures_total",
		Help: "Total frames that failed to decode, detect or persist",
	})
)
