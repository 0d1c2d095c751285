package capture

import (
	"context"
	"errors"

	"github.com/hemanyagillurkar28-lab/Krishi/internal/locale"
)

// ErrAlreadyCapturing is returned by Start while a prior capture is still
// in flight. The underlying capture APIs are known to race here: callers
// are expected to Stop, wait briefly and retry the start exactly once.
var ErrAlreadyCapturing = errors.New("capture already in progress")

// Result is the finalized transcript of one capture.
type Result struct {
	Text       string
	Confidence float64
}

// Capture is a single in-flight listening attempt. Exactly one of the two
// channels delivers a value, then both are closed.
type Capture struct {
	results chan Result
	errs    chan error
}

func newCapture() *Capture {
	return &Capture{
		results: make(chan Result, 1),
		errs:    make(chan error, 1),
	}
}

func (c *Capture) Results() <-chan Result { return c.results }
func (c *Capture) Errs() <-chan error     { return c.errs }

// NewScripted returns a Capture the caller resolves itself, for engine
// implementations outside this package and their test fakes.
func NewScripted() *Capture { return newCapture() }

// Deliver resolves the capture with a finalized transcript.
func (c *Capture) Deliver(res Result) { c.deliver(res) }

// Fail resolves the capture with an error.
func (c *Capture) Fail(err error) { c.fail(err) }

func (c *Capture) deliver(res Result) {
	c.results <- res
	close(c.results)
	close(c.errs)
}

func (c *Capture) fail(err error) {
	c.errs <- err
	close(c.results)
	close(c.errs)
}

// Engine starts and stops speech captures. Engines must be restartable
// after Stop.
type Engine interface {
	// Start begins listening in the given language. It returns
	// ErrAlreadyCapturing while a previous capture is still running.
	Start(ctx context.Context, lang locale.Language) (*Capture, error)
	// Stop aborts the in-flight capture, if any.
	Stop()
}
