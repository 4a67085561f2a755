package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"replisync/internal/model"

	"github.com/spf13/afero"
)

// Reset removes everything inside the replica folder, leaving the folder
// itself in place. Entries that cannot be removed are logged and skipped.
func (e *Engine) Reset(ctx context.Context) (model.RunResult, error) {
	result := model.RunResult{StartedAt: e.now()}

	exists, err := afero.DirExists(e.fs, e.paths.Replica)
	if err != nil {
		return result, fmt.Errorf("failed to stat replica: %w", err)
	}
	if !exists {
		return result, fmt.Errorf("%w: %s", ErrReplicaMissing, e.paths.Replica)
	}

	e.emit(model.ActionResetReplica, "", "")

	entries, err := afero.ReadDir(e.fs, e.paths.Replica)
	if err != nil {
		return result, fmt.Errorf("failed to read replica: %w", err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			result.FinishedAt = e.now()
			return result, err
		}

		path := filepath.Join(e.paths.Replica, entry.Name())
		if entry.IsDir() {
			if err := e.fs.RemoveAll(path); err != nil {
				e.deleteFailed(&result, path, err)
				continue
			}
			result.FoldersDeleted++
			e.emit(model.ActionDeleteFolder, path, entry.Name())
			continue
		}

		if err := e.fs.Remove(path); err != nil {
			e.deleteFailed(&result, path, err)
			continue
		}
		result.FilesDeleted++
		e.emit(model.ActionDeleteFile, path, entry.Name())
	}

	result.FinishedAt = e.now()
	return result, nil
}
