package model

import (
	"time"

	"gorm.io/gorm"
)

type RunStatus string

const (
	RunStatusRunning RunStatus = "RUNNING"
	RunStatusSuccess RunStatus = "SUCCESS"
	RunStatusFailed  RunStatus = "FAILED"
)

// Run is the persisted summary of one sync pass.
type Run struct {
	gorm.Model
	Source         string    `gorm:"not null"`
	Replica        string    `gorm:"not null"`
	Status         RunStatus `gorm:"not null;default:'RUNNING'"`
	StartedAt      time.Time `gorm:"not null"`
	FinishedAt     *time.Time
	FoldersCreated int
	FilesCopied    int
	FilesDeleted   int
	FoldersDeleted int
	DeleteFailures int
	ErrMsg         string
}

// History is a persisted event of a sync pass.
type History struct {
	gorm.Model
	RunID    uint   `gorm:"index"`
	Action   string `gorm:"not null"`
	FullPath string
	RelPath  string
	At       time.Time `gorm:"not null"`
}
