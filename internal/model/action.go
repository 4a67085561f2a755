package model

// Action identifies what a sync pass did to the replica.
type Action int

const (
	ActionRunStart Action = iota
	ActionRunEnd
	ActionCreateFolder
	ActionCopyFile
	ActionDeleteFile
	ActionDeleteFolder
	ActionResetReplica
)

var actionLabels = map[Action]string{
	ActionRunStart:     "SYNC START",
	ActionRunEnd:       "SYNC END",
	ActionCreateFolder: "CREATED FOLDER",
	ActionCopyFile:     "COPIED FILE",
	ActionDeleteFile:   "DELETED FILE",
	ActionDeleteFolder: "DELETED FOLDER",
	ActionResetReplica: "RESETTING REPLICA FOLDER",
}

func (a Action) String() string {
	if label, ok := actionLabels[a]; ok {
		return label
	}
	return "UNKNOWN"
}

// Mutates reports whether the action changes the replica tree.
func (a Action) Mutates() bool {
	switch a {
	case ActionCreateFolder, ActionCopyFile, ActionDeleteFile, ActionDeleteFolder:
		return true
	default:
		return false
	}
}
