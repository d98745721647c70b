// Package supervisor owns the lifecycle of the preview worker: it
// starts the consume loop, cancels it cooperatively and relays status
// messages back to the caller over a dedicated channel pair.
package supervisor

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eyetrace/preview/internal/log"
	"github.com/eyetrace/preview/pkg/detect"
	"github.com/eyetrace/preview/pkg/preview"
	"github.com/eyetrace/preview/pkg/stream"
)

// Sentinel errors for supervision failures.
var (
	// ErrAlreadyRunning is returned by Start while a worker is active.
	ErrAlreadyRunning = errors.New("supervisor: worker already running")

	// ErrNotRunning is returned by RequestStop without an active worker.
	ErrNotRunning = errors.New("supervisor: no worker running")

	// ErrJoinTimeout is returned when the worker does not exit within
	// the stop timeout. The design relies on the worker observing
	// cancellation promptly between payloads, so this is fatal.
	ErrJoinTimeout = errors.New("supervisor: worker did not exit before the stop timeout")
)

// DestinationError reports a missing destination directory.
type DestinationError struct {
	Dir string
}

// Error implements the error interface.
func (e *DestinationError) Error() string {
	return fmt.Sprintf("supervisor: destination directory %q does not exist", e.Dir)
}

// Status is one message from the worker. Exactly one of Text and Err
// is set; the receiver matches on Err instead of re-raising anything.
type Status struct {
	Text string
	Err  error
}

// State is the supervisor lifecycle state.
type State int

const (
	Idle State = iota
	Running
	Stopping
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	}
	return "unknown"
}

// RunConfig describes one worker run.
type RunConfig struct {
	// SourceURL is the frame publisher endpoint.
	SourceURL string

	// Dir is the destination directory. It must already exist.
	Dir string

	// Every is the sampling stride per source. Must be >= 1.
	Every int

	// Format is the persisted image format.
	Format preview.Format

	// DetectorParams overlays the default detector configuration.
	DetectorParams map[string]any

	// NewSource overrides how the frame source is opened. Defaults to
	// a websocket subscription on SourceURL for "frame.eye".
	NewSource func() (stream.FrameSource, error)

	// NewDetector overrides how per-source detectors are built.
	// Defaults to the gocv pupil detector with DetectorParams applied.
	NewDetector func() (detect.Detector, error)
}

// Supervisor drives one worker at a time through
// Idle -> Running -> Stopping -> Idle.
type Supervisor struct {
	mu         sync.Mutex
	state      State
	cancel     chan struct{}
	status     chan Status
	done       chan struct{}
	statusDead bool
	runID      string
}

// New creates an idle supervisor.
func New() *Supervisor {
	return &Supervisor{}
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start validates the configuration and spawns the worker. It fails
// with ErrAlreadyRunning unless the supervisor is idle and with a
// DestinationError when the directory is missing.
func (s *Supervisor) Start(cfg RunConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Idle {
		return ErrAlreadyRunning
	}
	if info, err := os.Stat(cfg.Dir); err != nil || !info.IsDir() {
		return &DestinationError{Dir: cfg.Dir}
	}
	if cfg.Every < 1 {
		return fmt.Errorf("supervisor: sampling interval %d, must be at least 1", cfg.Every)
	}

	if cfg.NewSource == nil {
		url := cfg.SourceURL
		cfg.NewSource = func() (stream.FrameSource, error) {
			return stream.DialWS(url, "frame.eye")
		}
	}
	if cfg.NewDetector == nil {
		detectorCfg := detect.DefaultConfig().Apply(cfg.DetectorParams)
		cfg.NewDetector = func() (detect.Detector, error) {
			return detect.NewPupil(detectorCfg), nil
		}
	}

	// The worker exclusively owns the far ends; the supervisor only
	// ever sends on cancel and receives on status.
	s.cancel = make(chan struct{}, 1)
	s.status = make(chan Status, 16)
	s.done = make(chan struct{})
	s.statusDead = false
	s.runID = uuid.NewString()

	go run(cfg, s.cancel, s.status, s.done)
	s.state = Running

	log.Info("preview worker started", "run", s.runID, "dir", cfg.Dir, "every", cfg.Every, "format", cfg.Format)
	return nil
}

// RequestStop sends the single cancel message of the run and waits at
// most timeout for the worker to exit. Cancellation is advisory: it is
// observed between payloads, never mid-frame.
func (s *Supervisor) RequestStop(timeout time.Duration) error {
	s.mu.Lock()
	if s.state != Running {
		s.mu.Unlock()
		return ErrNotRunning
	}
	s.state = Stopping
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	select {
	case cancel <- struct{}{}:
	default:
		// At most one cancel per run; a second send would block forever.
	}

	select {
	case <-done:
	case <-time.After(timeout):
		log.Error("preview worker join timed out", "run", s.runID, "timeout", timeout)
		return ErrJoinTimeout
	}

	s.mu.Lock()
	s.state = Idle
	s.mu.Unlock()
	log.Info("preview worker stopped", "run", s.runID)
	return nil
}

// PollStatus returns the next pending worker message without blocking,
// or nil when there is none. Once the status channel closes (the
// worker is gone), polling is permanently disabled for this run and
// the condition logged a single time.
func (s *Supervisor) PollStatus() *Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.statusDead || s.status == nil {
		return nil
	}
	select {
	case status, ok := <-s.status:
		if !ok {
			s.statusDead = true
			log.Warn("status channel closed, polling disabled for this run", "run", s.runID)
			return nil
		}
		return &status
	default:
		return nil
	}
}
