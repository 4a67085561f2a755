package repository

import (
	"replisync/internal/model"

	"gorm.io/gorm"
)

type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) SaveEvent(runID uint, event model.Event) error {
	history := model.History{
		RunID:    runID,
		Action:   event.Action.String(),
		FullPath: event.FullPath,
		RelPath:  event.RelPath,
		At:       event.At,
	}

	return r.db.Create(&history).Error
}

func (r *HistoryRepository) GetRecent(limit int) ([]model.History, error) {
	var histories []model.History
	result := r.db.
		Order("at desc").
		Order("id desc").
		Limit(limit).
		Find(&histories)

	return histories, result.Error
}

func (r *HistoryRepository) GetByRun(runID uint) ([]model.History, error) {
	var histories []model.History
	result := r.db.
		Where("run_id = ?", runID).
		Order("id asc").
		Find(&histories)

	return histories, result.Error
}

// GetChanges returns the most recent events that modified the replica.
func (r *HistoryRepository) GetChanges(limit int) ([]model.History, error) {
	var histories []model.History
	result := r.db.
		Where("action IN ?", []string{
			model.ActionCreateFolder.String(),
			model.ActionCopyFile.String(),
			model.ActionDeleteFile.String(),
			model.ActionDeleteFolder.String(),
		}).
		Order("at desc").
		Order("id desc").
		Limit(limit).
		Find(&histories)

	return histories, result.Error
}
