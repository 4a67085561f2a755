package daemon

import (
	"context"
	"fmt"
	"replisync/internal/config"
	"replisync/internal/engine"
	"replisync/internal/eventlog"
	"replisync/internal/logger"
	"replisync/internal/model"
	"replisync/internal/pipeline"
	"replisync/internal/repository"
	"replisync/internal/scheduler"
	"replisync/internal/watch"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Mirror keeps one replica in sync with its source on a schedule.
type Mirror struct {
	cfg     *config.Config
	fs      afero.Fs
	paths   model.PathPair
	logSink eventlog.Sink
	state   *State
	sched   *scheduler.Scheduler
	wakeCh  chan struct{}
	runs    *repository.RunRepository
	history *repository.HistoryRepository
}

// NewMirror builds a mirror from a validated config. conn may be nil, in
// which case no run history is kept.
func NewMirror(cfg *config.Config, fsys afero.Fs, conn *gorm.DB) (*Mirror, error) {
	interval, err := cfg.IntervalDuration()
	if err != nil {
		return nil, err
	}

	paths := model.PathPair{Source: cfg.Source, Replica: cfg.Replica}
	m := &Mirror{
		cfg:     cfg,
		fs:      fsys,
		paths:   paths,
		logSink: eventlog.NewLogSink(logger.Log),
		state:   NewState(paths),
		wakeCh:  make(chan struct{}, 1),
	}

	if conn != nil {
		m.runs = repository.NewRunRepository(conn)
		m.history = repository.NewHistoryRepository(conn)
	}

	m.sched = scheduler.New(m.Pass, interval, scheduler.Options{
		RunOnStart: cfg.RunOnStart,
		Wake:       m.wakeCh,
	})

	return m, nil
}

// Pass runs one synchronization pass and records it.
func (m *Mirror) Pass(ctx context.Context) error {
	sinks := eventlog.Fanout{m.logSink}

	var runID uint
	if m.runs != nil {
		run, err := m.runs.Begin(m.paths, time.Now())
		if err != nil {
			logger.Log.Warn("failed to record run",
				zap.Error(err))
		} else {
			runID = run.ID
			sinks = append(sinks, eventlog.NewHistorySink(m.history, runID))
		}
	}

	result, err := engine.New(m.fs, m.paths, sinks).Run(ctx)
	m.state.RecordPass(result, err)

	if runID != 0 {
		if ferr := m.runs.Finish(runID, result, err); ferr != nil {
			logger.Log.Warn("failed to finish run record",
				zap.Uint("run", runID),
				zap.Error(ferr))
		}
	}

	if len(result.Failures) > 0 {
		logger.Log.Warn("some replica entries could not be deleted",
			zap.Int("count", len(result.Failures)))
	}

	if err != nil {
		return err
	}

	logger.Log.Debug("pass finished",
		zap.Int("changes", result.Changes()),
		zap.Duration("took", result.Duration()))
	return nil
}

// Reset clears the replica folder.
func (m *Mirror) Reset(ctx context.Context) error {
	result, err := engine.New(m.fs, m.paths, m.logSink).Reset(ctx)
	m.state.RecordPass(result, err)
	if err != nil {
		return fmt.Errorf("failed to reset replica: %w", err)
	}

	return nil
}

// Start runs the schedule until ctx is cancelled.
func (m *Mirror) Start(ctx context.Context) error {
	if m.cfg.ResetOnStart {
		if err := m.Reset(ctx); err != nil {
			return err
		}
	}

	if m.cfg.WatchSource {
		w, err := watch.Open(m.paths.Source, 256)
		if err != nil {
			return err
		}
		defer func(w *watch.Watcher) {
			_ = w.Close()
		}(w)

		delay := time.Duration(m.cfg.DebounceMS) * time.Millisecond
		go m.forward(pipeline.Debounce(pipeline.Filter(w.Notices(), pipeline.NewIgnorer(w.Root(), m.cfg.IgnoreList)), delay))
	}

	logger.Log.Info("mirror started",
		zap.String("source", m.paths.Source),
		zap.String("replica", m.paths.Replica),
		zap.Duration("interval", m.sched.Snapshot().Interval))

	return m.sched.Start(ctx)
}

func (m *Mirror) forward(signals <-chan struct{}) {
	for range signals {
		m.Trigger()
	}
}

// Trigger asks the scheduler to end its current wait early.
func (m *Mirror) Trigger() {
	select {
	case m.wakeCh <- struct{}{}:
	default:
	}
}

func (m *Mirror) Snapshot() model.MirrorSnapshot {
	snap := m.state.Snapshot()
	snap.Scheduler = m.sched.Snapshot()
	return snap
}
