package fileutil

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileAndDirExists(t *testing.T) {
	fsys := NewAferoFS(afero.NewMemMapFs())
	require.NoError(t, fsys.MkdirAll("/lib", ReadWriteExecuteUserReadExecuteOthers))
	require.NoError(t, fsys.WriteFile("/lib/a.jpg", []byte("x"), ReadWriteUserReadOthers))

	exists, err := FileExists(fsys, "/lib/a.jpg")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = FileExists(fsys, "/lib")
	require.NoError(t, err)
	assert.False(t, exists, "a directory is not a file")

	exists, err = FileExists(fsys, "/lib/missing.jpg")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = DirExists(fsys, "/lib")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = DirExists(fsys, "/nope")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestEnsureDirExists(t *testing.T) {
	fsys := NewAferoFS(afero.NewMemMapFs())

	created, err := EnsureDirExists(fsys, "/out/2019/07/04")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = EnsureDirExists(fsys, "/out/2019/07/04")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestReadLines(t *testing.T) {
	fsys := NewAferoFS(afero.NewMemMapFs())
	content := "  a.jpg  \n\n# comment\nsub dir/b.jpg\r\n\t\n"
	require.NoError(t, fsys.WriteFile("/list.txt", []byte(content), ReadWriteUserReadOthers))

	lines, err := ReadLines(fsys, "/list.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "sub dir/b.jpg"}, lines)

	_, err = ReadLines(fsys, "/missing.txt")
	require.Error(t, err)
	assert.True(t, IsNotExist(err))
}

func TestGetAbsPath(t *testing.T) {
	testCases := []struct {
		name          string
		path          string
		expectedError bool
	}{
		{name: "relative path", path: "utils_test.go"},
		{name: "absolute path", path: "/tmp/test"},
		{name: "empty path", path: "", expectedError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := GetAbsPath(tc.path)
			if tc.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, filepath.IsAbs(result))
			assert.Equal(t, filepath.Base(tc.path), filepath.Base(result))
		})
	}
}
