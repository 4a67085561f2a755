package engine

import (
	"context"
	"replisync/internal/eventlog"
	"replisync/internal/model"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReset(t *testing.T) {
	base := afero.NewMemMapFs()
	fsys := denyRemoveFs{Fs: base, deny: map[string]bool{"/replica/locked.txt": true}}
	e, rec := newTestEngine(t, fsys)

	mockFile{path: "/replica/dir/inner/f.txt"}.write(t, base)
	mockFile{path: "/replica/file.txt"}.write(t, base)
	mockFile{path: "/replica/locked.txt"}.write(t, base)
	mockFile{path: "/src/keep.txt"}.write(t, base)

	result, err := e.Reset(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []step{
		{model.ActionResetReplica, ""},
		{model.ActionDeleteFolder, "dir"},
		{model.ActionDeleteFile, "file.txt"},
	}, steps(rec.Events()))
	assert.Equal(t, 1, result.FoldersDeleted)
	assert.Equal(t, 1, result.FilesDeleted)
	assert.Len(t, result.Failures, 1)

	assert.Equal(t, map[string]bool{"locked.txt": false}, tree(t, base, replicaRoot))
	assert.Equal(t, map[string]bool{"keep.txt": false}, tree(t, base, srcRoot))
}

func TestResetMissingReplica(t *testing.T) {
	fsys := afero.NewMemMapFs()
	rec := eventlog.NewRecorder()
	e := New(fsys, model.PathPair{Source: srcRoot, Replica: "/nowhere"}, rec)

	_, err := e.Reset(context.Background())
	assert.ErrorIs(t, err, ErrReplicaMissing)
	assert.Empty(t, rec.Events())
}
