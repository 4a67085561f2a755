package eventlog

import (
	"replisync/internal/logger"
	"replisync/internal/model"

	"go.uber.org/zap"
)

type EventSaver interface {
	SaveEvent(runID uint, event model.Event) error
}

// HistorySink persists the events of one run. Storage failures are logged
// and never interrupt the pass.
type HistorySink struct {
	repo  EventSaver
	runID uint
}

func NewHistorySink(repo EventSaver, runID uint) *HistorySink {
	return &HistorySink{repo: repo, runID: runID}
}

func (s *HistorySink) Emit(event model.Event) {
	if err := s.repo.SaveEvent(s.runID, event); err != nil {
		logger.Log.Warn("failed to save history",
			zap.Uint("run", s.runID),
			zap.String("action", event.Action.String()),
			zap.Error(err))
	}
}
