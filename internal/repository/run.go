package repository

import (
	"replisync/internal/model"
	"time"

	"gorm.io/gorm"
)

type RunRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) Begin(paths model.PathPair, startedAt time.Time) (model.Run, error) {
	run := model.Run{
		Source:    paths.Source,
		Replica:   paths.Replica,
		Status:    model.RunStatusRunning,
		StartedAt: startedAt,
	}

	return run, r.db.Create(&run).Error
}

// Finish records the outcome of a run. runErr is the error the pass returned.
func (r *RunRepository) Finish(id uint, result model.RunResult, runErr error) error {
	status := model.RunStatusSuccess
	errMsg := ""
	if runErr != nil {
		status = model.RunStatusFailed
		errMsg = runErr.Error()
	}

	finishedAt := result.FinishedAt
	if finishedAt.IsZero() {
		finishedAt = time.Now()
	}

	return r.db.Model(&model.Run{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":          status,
			"finished_at":     finishedAt,
			"folders_created": result.FoldersCreated,
			"files_copied":    result.FilesCopied,
			"files_deleted":   result.FilesDeleted,
			"folders_deleted": result.FoldersDeleted,
			"delete_failures": len(result.Failures),
			"err_msg":         errMsg,
		}).Error
}

func (r *RunRepository) GetByID(id uint) (model.Run, error) {
	var run model.Run
	return run, r.db.First(&run, id).Error
}

func (r *RunRepository) GetRecent(limit int) ([]model.Run, error) {
	var runs []model.Run
	result := r.db.
		Order("started_at desc").
		Order("id desc").
		Limit(limit).
		Find(&runs)

	return runs, result.Error
}

type Stats struct {
	Total   int64 `json:"total"`
	Success int64 `json:"success"`
	Failed  int64 `json:"failed"`
}

func (r *RunRepository) GetStats() (Stats, error) {
	var stats Stats
	if err := r.db.Model(&model.Run{}).Count(&stats.Total).Error; err != nil {
		return stats, err
	}

	if err := r.db.Model(&model.Run{}).
		Where("status = ?", model.RunStatusSuccess).
		Count(&stats.Success).Error; err != nil {
		return stats, err
	}

	if err := r.db.Model(&model.Run{}).
		Where("status = ?", model.RunStatusFailed).
		Count(&stats.Failed).Error; err != nil {
		return stats, err
	}

	return stats, nil
}
