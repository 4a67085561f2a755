package model

import "time"

type SchedulerState string

const (
	StateIdle      SchedulerState = "IDLE"
	StateWaiting   SchedulerState = "WAITING"
	StateRunning   SchedulerState = "RUNNING"
	StateCancelled SchedulerState = "CANCELLED"
)

type SchedulerSnapshot struct {
	State    SchedulerState `json:"state"`
	Interval time.Duration  `json:"interval"`
	InFlight bool           `json:"in_flight"`
	Passes   int            `json:"passes"`
	Failed   int            `json:"failed"`
	Skipped  int            `json:"skipped"`
	LastPass *time.Time     `json:"last_pass"`
}

type MirrorSnapshot struct {
	Source         string            `json:"source"`
	Replica        string            `json:"replica"`
	StartedAt      time.Time         `json:"started_at"`
	FoldersCreated int               `json:"folders_created"`
	FilesCopied    int               `json:"files_copied"`
	FilesDeleted   int               `json:"files_deleted"`
	FoldersDeleted int               `json:"folders_deleted"`
	DeleteFailures int               `json:"delete_failures"`
	LastError      string            `json:"last_error,omitempty"`
	Scheduler      SchedulerSnapshot `json:"scheduler"`
}
