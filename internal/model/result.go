package model

import "time"

// EntryFailure is a replica entry that could not be removed during a pass.
type EntryFailure struct {
	Path string
	Err  error
}

type RunResult struct {
	StartedAt      time.Time
	FinishedAt     time.Time
	FoldersCreated int
	FilesCopied    int
	FilesDeleted   int
	FoldersDeleted int
	Failures       []EntryFailure
}

// Changes is the number of replica mutations performed by the pass.
func (r RunResult) Changes() int {
	return r.FoldersCreated + r.FilesCopied + r.FilesDeleted + r.FoldersDeleted
}

func (r RunResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
