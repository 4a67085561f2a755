// Package scheduler re-runs a sync pass on a fixed interval.
//
// Each pass gets a deadline equal to the interval. A pass that overruns is
// abandoned: its context is cancelled and the scheduler goes back to waiting
// without waiting for it. Cancellation of a pass is cooperative, so an
// abandoned pass may keep touching the replica until it next checks its
// context. Ticks that arrive while such a pass is still executing are
// skipped, so two passes never execute at the same time.
package scheduler

import (
	"context"
	"errors"
	"replisync/internal/logger"
	"replisync/internal/model"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

var ErrInterval = errors.New("interval must be positive")

const (
	msgTooLong      = "sync pass took too long, skipping"
	msgStillRunning = "previous sync pass is still running, skipping"
	msgFailed       = "sync pass failed"
	msgExit         = "synchronization interval was canceled, exiting gracefully"
)

type PassFunc func(ctx context.Context) error

type Options struct {
	Clock  clockwork.Clock
	Logger *zap.Logger

	// RunOnStart runs the first pass immediately instead of after one
	// interval.
	RunOnStart bool

	// Wake ends the current wait early when it receives.
	Wake <-chan struct{}
}

type Scheduler struct {
	fn         PassFunc
	interval   time.Duration
	clock      clockwork.Clock
	log        *zap.Logger
	runOnStart bool
	wake       <-chan struct{}

	wg sync.WaitGroup

	mu       sync.RWMutex
	state    model.SchedulerState
	inFlight bool
	passes   int
	failed   int
	skipped  int
	lastPass *time.Time
}

func New(fn PassFunc, interval time.Duration, opts Options) *Scheduler {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	log := opts.Logger
	if log == nil {
		log = logger.Log
	}

	return &Scheduler{
		fn:         fn,
		interval:   interval,
		clock:      clock,
		log:        log,
		runOnStart: opts.RunOnStart,
		wake:       opts.Wake,
		state:      model.StateIdle,
	}
}

// Start runs passes until ctx is cancelled. It returns nil on cancellation.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return ErrInterval
	}

	if s.runOnStart && !s.tick(ctx) {
		return s.exit()
	}

	for {
		if !s.wait(ctx) {
			return s.exit()
		}

		if !s.tick(ctx) {
			return s.exit()
		}
	}
}

func (s *Scheduler) wait(ctx context.Context) bool {
	s.setState(model.StateWaiting)

	timer := s.clock.NewTimer(s.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	case <-s.wake:
		s.log.Debug("source changed, syncing early")
		return true
	}
}

// tick runs one pass and reports whether the scheduler should keep going.
func (s *Scheduler) tick(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}

	if s.executing() {
		s.log.Warn(msgStillRunning)
		s.record(func() { s.skipped++ })
		return true
	}

	s.setState(model.StateRunning)

	passCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)

	s.setInFlight(true)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := s.fn(passCtx)
		s.setInFlight(false)
		done <- err
	}()

	deadline := s.clock.NewTimer(s.interval)
	defer deadline.Stop()

	select {
	case err := <-done:
		cancel()
		if err != nil && ctx.Err() != nil {
			return false
		}
		s.finished(err)
		return true

	case <-deadline.Chan():
		cancel()
		s.log.Warn(msgTooLong,
			zap.Duration("deadline", s.interval))
		s.record(func() { s.skipped++ })
		return true

	case <-ctx.Done():
		cancel()
		s.wg.Wait()
		return false
	}
}

func (s *Scheduler) finished(err error) {
	now := s.clock.Now()
	s.record(func() {
		s.passes++
		s.lastPass = &now
		if err != nil {
			s.failed++
		}
	})

	if err != nil {
		s.log.Error(msgFailed, zap.Error(err))
	}
}

func (s *Scheduler) exit() error {
	s.wg.Wait()
	s.setState(model.StateCancelled)
	s.log.Info(msgExit)
	return nil
}

func (s *Scheduler) State() model.SchedulerState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Scheduler) Snapshot() model.SchedulerSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return model.SchedulerSnapshot{
		State:    s.state,
		Interval: s.interval,
		InFlight: s.inFlight,
		Passes:   s.passes,
		Failed:   s.failed,
		Skipped:  s.skipped,
		LastPass: s.lastPass,
	}
}

func (s *Scheduler) setState(state model.SchedulerState) {
	s.record(func() { s.state = state })
}

func (s *Scheduler) setInFlight(v bool) {
	s.record(func() { s.inFlight = v })
}

func (s *Scheduler) executing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight
}

func (s *Scheduler) record(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}
