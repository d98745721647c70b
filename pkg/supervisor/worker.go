package supervisor

import (
	"fmt"
	"time"

	"github.com/eyetrace/preview/pkg/stream"
)

// idleWait is how long the loop sleeps when the source has no pending
// frame, keeping the poll loop from spinning.
const idleWait = 2 * time.Millisecond

// run is the worker loop. It owns the receiving end of cancel and the
// sending end of status, and closes status on exit so the supervisor
// can tell the worker is gone.
//
// Cancellation is checked once per iteration: an in-progress
// decode/detect/persist sequence is never interrupted.
func run(cfg RunConfig, cancel <-chan struct{}, status chan<- Status, done chan<- struct{}) {
	defer close(done)
	defer close(status)

	status <- Status{Text: fmt.Sprintf("connecting to %q...", cfg.SourceURL)}
	source, err := cfg.NewSource()
	if err != nil {
		status <- Status{Err: err}
		return
	}
	defer source.Close()

	registry := stream.NewRegistry(stream.Config{
		Dir:         cfg.Dir,
		Every:       cfg.Every,
		Format:      cfg.Format,
		NewDetector: cfg.NewDetector,
	})
	defer registry.Close()

	status <- Status{Text: fmt.Sprintf("generating previews in %q...", cfg.Dir)}

	for {
		select {
		case <-cancel:
			return
		default:
		}

		frame, err := source.Poll()
		if err != nil {
			status <- Status{Err: err}
			return
		}
		if frame == nil {
			time.Sleep(idleWait)
			continue
		}

		eye, err := stream.SourceID(frame.Topic)
		if err != nil {
			status <- Status{Err: err}
			return
		}
		if _, err := registry.Route(eye, frame.Payload); err != nil {
			// Fatal to the run; files already written stay on disk.
			status <- Status{Err: err}
			return
		}
	}
}
