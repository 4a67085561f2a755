package util

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFilePreservesMetadata(t *testing.T) {
	fsys := afero.NewMemMapFs()
	modTime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, afero.WriteFile(fsys, "/src/a.txt", []byte("hello"), 0640))
	require.NoError(t, fsys.Chtimes("/src/a.txt", modTime, modTime))

	require.NoError(t, CopyFile(fsys, "/src/a.txt", "/dst/nested/a.txt"))

	contents, err := afero.ReadFile(fsys, "/dst/nested/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(contents))

	info, err := fsys.Stat("/dst/nested/a.txt")
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(modTime))
	assert.Equal(t, "-rw-r-----", info.Mode().Perm().String())

	exists, err := afero.Exists(fsys, "/dst/nested/a.txt"+tmpSuffix)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCopyFileOverwrites(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/src/a.txt", []byte("new"), 0644))
	require.NoError(t, afero.WriteFile(fsys, "/dst/a.txt", []byte("old contents"), 0644))

	require.NoError(t, CopyFile(fsys, "/src/a.txt", "/dst/a.txt"))

	contents, err := afero.ReadFile(fsys, "/dst/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "new", string(contents))
}

func TestCopyFileMissingSource(t *testing.T) {
	fsys := afero.NewMemMapFs()
	assert.Error(t, CopyFile(fsys, "/src/missing", "/dst/missing"))
}

func TestLstat(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/dir", 0755))

	info, err := Lstat(fsys, "/dir")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.True(t, info.IsDir())

	info, err = Lstat(fsys, "/missing")
	assert.NoError(t, err)
	assert.Nil(t, info)
}
