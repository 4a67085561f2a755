package model

import (
	"fmt"
	"time"
)

// Event records a single action performed on the replica. FullPath and
// RelPath are empty for RunStart, RunEnd and ResetReplica.
type Event struct {
	Action   Action
	FullPath string
	RelPath  string
	At       time.Time
}

// Describe renders the human-readable detail of the event.
func (e Event) Describe() string {
	switch e.Action {
	case ActionCopyFile:
		return fmt.Sprintf("Copied file '%s' to '%s'", e.RelPath, e.FullPath)
	case ActionCreateFolder:
		return fmt.Sprintf("Created folder '%s' in '%s'", e.RelPath, e.FullPath)
	case ActionDeleteFolder:
		return fmt.Sprintf("Deleted folder '%s' in '%s'", e.RelPath, e.FullPath)
	case ActionDeleteFile:
		return fmt.Sprintf("Deleted file '%s' in '%s'", e.RelPath, e.FullPath)
	default:
		return ""
	}
}

func (e Event) String() string {
	if d := e.Describe(); d != "" {
		return e.Action.String() + " - " + d
	}
	return e.Action.String()
}
