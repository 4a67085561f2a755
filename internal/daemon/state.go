package daemon

import (
	"replisync/internal/model"
	"sync"
	"time"
)

// State accumulates what the passes of one mirror have done so far.
type State struct {
	mu             sync.RWMutex
	Source         string
	Replica        string
	StartedAt      time.Time
	FoldersCreated int
	FilesCopied    int
	FilesDeleted   int
	FoldersDeleted int
	DeleteFailures int
	LastError      string
}

func NewState(paths model.PathPair) *State {
	return &State{
		Source:    paths.Source,
		Replica:   paths.Replica,
		StartedAt: time.Now(),
	}
}

func (s *State) RecordPass(result model.RunResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.FoldersCreated += result.FoldersCreated
	s.FilesCopied += result.FilesCopied
	s.FilesDeleted += result.FilesDeleted
	s.FoldersDeleted += result.FoldersDeleted
	s.DeleteFailures += len(result.Failures)

	if err != nil {
		s.LastError = err.Error()
	} else {
		s.LastError = ""
	}
}

func (s *State) Snapshot() model.MirrorSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return model.MirrorSnapshot{
		Source:         s.Source,
		Replica:        s.Replica,
		StartedAt:      s.StartedAt,
		FoldersCreated: s.FoldersCreated,
		FilesCopied:    s.FilesCopied,
		FilesDeleted:   s.FilesDeleted,
		FoldersDeleted: s.FoldersDeleted,
		DeleteFailures: s.DeleteFailures,
		LastError:      s.LastError,
	}
}
