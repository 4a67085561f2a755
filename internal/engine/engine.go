// Package engine mirrors a source tree onto a replica tree in one pass.
//
// A pass runs three phases in order: replica folders are created top-down,
// new or newer files are copied with their mtime preserved, and replica
// entries without a source counterpart are removed. Nothing is cached
// between passes, so each pass recomputes the full difference.
//
// The context is checked between filesystem calls only. A pass whose context
// is cancelled stops at the next entry, leaving whatever it already applied.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"replisync/internal/eventlog"
	"replisync/internal/logger"
	"replisync/internal/model"
	"replisync/internal/util"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

var ErrReplicaMissing = errors.New("replica folder does not exist")

type Engine struct {
	fs    afero.Fs
	paths model.PathPair
	sink  eventlog.Sink
	now   func() time.Time
}

func New(fsys afero.Fs, paths model.PathPair, sink eventlog.Sink) *Engine {
	if sink == nil {
		sink = eventlog.Fanout(nil)
	}

	return &Engine{
		fs:    fsys,
		paths: paths,
		sink:  sink,
		now:   time.Now,
	}
}

func (e *Engine) Paths() model.PathPair {
	return e.paths
}

// Run performs one synchronization pass. Failures to delete individual
// replica entries are reported in the result; any other failure aborts the
// pass and is returned.
func (e *Engine) Run(ctx context.Context) (model.RunResult, error) {
	result := model.RunResult{StartedAt: e.now()}
	e.emit(model.ActionRunStart, "", "")

	if err := e.createFolders(ctx, &result); err != nil {
		result.FinishedAt = e.now()
		return result, fmt.Errorf("failed to create folders: %w", err)
	}

	if err := e.copyFiles(ctx, &result); err != nil {
		result.FinishedAt = e.now()
		return result, fmt.Errorf("failed to copy files: %w", err)
	}

	if err := e.prune(ctx, ".", &result); err != nil {
		result.FinishedAt = e.now()
		return result, fmt.Errorf("failed to delete removed entries: %w", err)
	}

	result.FinishedAt = e.now()
	e.emit(model.ActionRunEnd, "", "")
	return result, nil
}

func (e *Engine) createFolders(ctx context.Context, result *model.RunResult) error {
	return afero.Walk(e.fs, e.paths.Source, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if !info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(e.paths.Source, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(e.paths.Replica, rel)

		existing, err := util.Lstat(e.fs, dst)
		if err != nil {
			return err
		}

		if existing != nil && existing.IsDir() {
			return nil
		}

		if existing != nil {
			if err := e.fs.Remove(dst); err != nil {
				return fmt.Errorf("failed to replace file %s with folder: %w", dst, err)
			}
			result.FilesDeleted++
			e.emit(model.ActionDeleteFile, dst, rel)
		}

		if err := e.fs.MkdirAll(dst, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dst, err)
		}

		result.FoldersCreated++
		e.emit(model.ActionCreateFolder, dst, rel)
		return nil
	})
}

func (e *Engine) copyFiles(ctx context.Context, result *model.RunResult) error {
	return afero.Walk(e.fs, e.paths.Source, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(e.paths.Source, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(e.paths.Replica, rel)

		existing, err := util.Lstat(e.fs, dst)
		if err != nil {
			return err
		}

		if existing != nil && existing.IsDir() {
			if err := e.fs.RemoveAll(dst); err != nil {
				return fmt.Errorf("failed to replace folder %s with file: %w", dst, err)
			}
			result.FoldersDeleted++
			e.emit(model.ActionDeleteFolder, dst, rel)
			existing = nil
		}

		if existing != nil && !info.ModTime().After(existing.ModTime()) {
			return nil
		}

		if err := util.CopyFile(e.fs, path, dst); err != nil {
			return fmt.Errorf("failed to copy %s: %w", rel, err)
		}

		result.FilesCopied++
		e.emit(model.ActionCopyFile, dst, rel)
		return nil
	})
}

// prune removes replica entries under rel that have no source counterpart.
// A folder missing from the source is removed as a whole, without reporting
// the files inside it. Entries that cannot be read or removed are recorded
// as failures and skipped.
func (e *Engine) prune(ctx context.Context, rel string, result *model.RunResult) error {
	dir := filepath.Join(e.paths.Replica, rel)
	entries, err := afero.ReadDir(e.fs, dir)
	if err != nil {
		e.deleteFailed(result, dir, fmt.Errorf("failed to read %s: %w", dir, err))
		return nil
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		childRel := filepath.Join(rel, entry.Name())
		dst := filepath.Join(e.paths.Replica, childRel)

		src, err := util.Lstat(e.fs, filepath.Join(e.paths.Source, childRel))
		if err != nil {
			e.deleteFailed(result, dst, err)
			continue
		}

		switch {
		case entry.IsDir() && src != nil && src.IsDir():
			if err := e.prune(ctx, childRel, result); err != nil {
				return err
			}

		case entry.IsDir():
			if err := e.fs.RemoveAll(dst); err != nil {
				e.deleteFailed(result, dst, err)
				continue
			}
			result.FoldersDeleted++
			e.emit(model.ActionDeleteFolder, dst, childRel)

		case src == nil || src.IsDir():
			if err := e.fs.Remove(dst); err != nil {
				e.deleteFailed(result, dst, err)
				continue
			}
			result.FilesDeleted++
			e.emit(model.ActionDeleteFile, dst, childRel)
		}
	}

	return nil
}

func (e *Engine) deleteFailed(result *model.RunResult, path string, err error) {
	logger.Log.Warn("could not delete replica entry",
		zap.String("path", path),
		zap.Error(err))
	result.Failures = append(result.Failures, model.EntryFailure{Path: path, Err: err})
}

func (e *Engine) emit(action model.Action, fullPath, relPath string) {
	e.sink.Emit(model.Event{
		Action:   action,
		FullPath: fullPath,
		RelPath:  relPath,
		At:       e.now(),
	})
}
