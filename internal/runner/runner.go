// Package runner runs one evaluation at a time off the caller's goroutine.
package runner

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/njchilds90/gocalc/internal/evaluator"
)

// ErrBusy is returned by Submit while an evaluation is in flight.
var ErrBusy = errors.New("an evaluation is already running")

// State represents the lifecycle state of the runner.
type State int

const (
	StateIdle State = iota
	StateRunning
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRunning:
		return "Running"
	default:
		return "Unknown"
	}
}

// Observer is told about every finished evaluation.
type Observer interface {
	ObserveEvaluation(op evaluator.Operation, ok bool, took time.Duration)
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used for job start and finish events.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Runner) { r.log = log }
}

// WithObserver registers an Observer.
func WithObserver(o Observer) Option {
	return func(r *Runner) { r.observer = o }
}

// Runner is a single-flight wrapper around an Evaluator.
type Runner struct {
	eval     *evaluator.Evaluator
	log      zerolog.Logger
	observer Observer

	mu    sync.Mutex
	state State
	done  chan struct{}
}

// New creates an idle Runner.
func New(eval *evaluator.Evaluator, opts ...Option) *Runner {
	r := &Runner{eval: eval, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Submit starts evaluating req and returns immediately. onDone is called
// exactly once with the Result, success or failure. The runner returns to
// Idle after onDone returns.
//
// A blank expression is rejected with evaluator.ErrEmptyExpression and a
// submission while Running with ErrBusy; onDone is not called in either
// case.
func (r *Runner) Submit(req evaluator.Request, onDone func(evaluator.Result)) error {
	if onDone == nil {
		return errors.New("runner: nil onDone")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	if r.state == StateRunning {
		r.mu.Unlock()
		return ErrBusy
	}
	r.state = StateRunning
	done := make(chan struct{})
	r.done = done
	r.mu.Unlock()

	job := uuid.NewString()
	r.log.Debug().Str("job", job).Str("operation", req.Operation.String()).Msg("job submitted")
	go r.run(job, req, onDone, done)
	return nil
}

func (r *Runner) run(job string, req evaluator.Request, onDone func(evaluator.Result), done chan struct{}) {
	defer func() {
		r.mu.Lock()
		r.state = StateIdle
		r.done = nil
		r.mu.Unlock()
		close(done)
	}()

	start := time.Now()
	res := r.eval.Evaluate(req)
	took := time.Since(start)

	if r.observer != nil {
		r.observer.ObserveEvaluation(req.Operation, res.OK(), took)
	}
	r.log.Info().
		Str("job", job).
		Str("operation", req.Operation.String()).
		Bool("ok", res.OK()).
		Dur("took", took).
		Msg("job finished")

	onDone(res)
}

// Wait blocks until the runner is idle.
func (r *Runner) Wait() {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done != nil {
		<-done
	}
}
