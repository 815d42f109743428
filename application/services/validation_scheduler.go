package services

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"chatflow-backend/domain/core/aggregates"
	"chatflow-backend/domain/core/validators"
	"chatflow-backend/pkg/clock"
)

// ValidationScheduler debounces re-validation of a workflow. It is a two
// state machine: idle, and pending with a timer armed. Arming while pending
// resets the timer, so a burst of mutations inside one quiescence window
// produces exactly one validation run, against the snapshot as of the last
// mutation.
//
// The mutex only guards the scheduler's own state; the workflow aggregate
// carries no locks. By default the timer callback validates directly, which
// is safe only while nothing else touches the workflow concurrently. A
// long-running loop that keeps mutating the workflow registers a Notify
// channel and runs the validation itself, so every aggregate access stays
// on that loop's goroutine.
type ValidationScheduler struct {
	mu       sync.Mutex
	workflow *aggregates.Workflow
	clk      clock.Clock
	window   time.Duration
	logger   *zap.Logger

	timer   clock.Timer
	pending bool
	closed  bool
	notify  chan struct{}

	onValidated func(aggregates.ValidationState)
}

// NewValidationScheduler creates a scheduler over the given workflow. The
// window bounds how long the graph may stay quiescent before a pending
// validation runs.
func NewValidationScheduler(
	workflow *aggregates.Workflow,
	window time.Duration,
	clk clock.Clock,
	logger *zap.Logger,
) *ValidationScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ValidationScheduler{
		workflow: workflow,
		clk:      clk,
		window:   window,
		logger:   logger,
	}
}

// Notify switches the scheduler to single-consumer delivery: when the
// quiescence window elapses, the timer goroutine sends on the returned
// channel instead of validating, and the consumer runs the validation
// itself via FlushNow. This keeps every aggregate access on the consumer's
// goroutine; the aggregate carries no locks of its own.
func (s *ValidationScheduler) Notify() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notify == nil {
		s.notify = make(chan struct{}, 1)
	}
	return s.notify
}

// SetOnValidated registers an observer invoked after each validation run
// writes its snapshot back
func (s *ValidationScheduler) SetOnValidated(fn func(aggregates.ValidationState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onValidated = fn
}

// Arm schedules a validation run after the quiescence window, resetting the
// window if one is already scheduled
func (s *ValidationScheduler) Arm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.pending {
		s.timer.Reset(s.window)
		return
	}
	s.pending = true
	s.timer = s.clk.AfterFunc(s.window, s.fire)
}

// Cancel drops any pending validation run
func (s *ValidationScheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

func (s *ValidationScheduler) cancelLocked() {
	if s.pending {
		s.timer.Stop()
		s.pending = false
	}
}

// FlushNow bypasses the debounce and validates the current snapshot
// synchronously, for explicit user actions like save
func (s *ValidationScheduler) FlushNow() aggregates.ValidationState {
	s.mu.Lock()
	s.cancelLocked()
	closed := s.closed
	s.mu.Unlock()
	if !closed {
		s.run()
	}
	return s.workflow.Validation()
}

// Pending reports whether a validation run is scheduled
func (s *ValidationScheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Close cancels any armed timer; no callback fires afterwards
func (s *ValidationScheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.closed = true
}

// fire is the timer callback. With a notify channel registered it never
// touches the workflow: it only signals the consumer.
func (s *ValidationScheduler) fire() {
	s.mu.Lock()
	if s.closed || !s.pending {
		s.mu.Unlock()
		return
	}
	s.pending = false
	notify := s.notify
	s.mu.Unlock()

	if notify != nil {
		select {
		case notify <- struct{}{}:
		default:
		}
		return
	}

	s.run()
}

// run validates the then-current snapshot and writes the result back
func (s *ValidationScheduler) run() {
	diagnostics := validators.ValidateFlow(s.workflow.Nodes(), s.workflow.Edges())
	now := s.clk.Now().UnixMilli()

	s.workflow.SetValidation(aggregates.ValidationState{
		Errors:        diagnostics,
		IsValid:       validators.IsValid(diagnostics),
		LastValidated: &now,
	})

	s.logger.Debug("workflow validated",
		zap.String("workflowID", s.workflow.ID()),
		zap.Int("diagnostics", len(diagnostics)),
		zap.Bool("isValid", validators.IsValid(diagnostics)),
	)

	s.mu.Lock()
	observer := s.onValidated
	s.mu.Unlock()
	if observer != nil {
		observer(s.workflow.Validation())
	}
}
