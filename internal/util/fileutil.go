package util

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const tmpSuffix = ".replisync.tmp"

// CopyFile copies src to dst through a temporary file, then carries over the
// source's mode and modification time so later passes can compare mtimes.
func CopyFile(fsys afero.Fs, src, dst string) error {
	in, err := fsys.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open src: %w", err)
	}

	defer func(in afero.File) {
		_ = in.Close()
	}(in)

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat src: %w", err)
	}

	if err := AtomicWrite(fsys, dst, in, info.Mode().Perm()); err != nil {
		return err
	}

	if err := fsys.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("failed to preserve mtime: %w", err)
	}

	return nil
}

func AtomicWrite(fsys afero.Fs, dst string, r io.Reader, perm os.FileMode) error {
	if err := fsys.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create parent dir: %w", err)
	}

	tmp := dst + tmpSuffix
	f, err := fsys.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = fsys.Remove(tmp)
		return fmt.Errorf("failed to write: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := fsys.Chmod(tmp, perm); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("failed to set mode: %w", err)
	}

	if err := fsys.Rename(tmp, dst); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("failed to rename: %w", err)
	}

	return nil
}

// Lstat returns the entry at path, or nil when nothing exists there.
func Lstat(fsys afero.Fs, path string) (os.FileInfo, error) {
	var (
		info os.FileInfo
		err  error
	)
	if l, ok := fsys.(afero.Lstater); ok {
		info, _, err = l.LstatIfPossible(path)
	} else {
		info, err = fsys.Stat(path)
	}

	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	return info, err
}
