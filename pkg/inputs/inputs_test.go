package inputs

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucas-albers-lz4/imagelink/pkg/fileutil"
	"github.com/lucas-albers-lz4/imagelink/pkg/testutil"
)

func setupFS(t *testing.T) fileutil.FS {
	t.Helper()
	testutil.UseTestLogger(t)
	mem := afero.NewMemMapFs()
	for _, p := range []string{
		"/work/a.jpg",
		"/work/b.jpg",
		"/work/album/z.JPG",
		"/work/album/notes.txt",
		"/work/album/deep/y.heic",
		"/work/album/deep/x.png",
	} {
		testutil.WriteFile(t, mem, p, []byte("x"))
	}
	testutil.WriteFile(t, mem, "/work/list.txt", []byte("# holiday\nb.jpg\n\n  c.jpg  \na.jpg\n"))
	return fileutil.NewAferoFS(mem)
}

func TestCollectFilesAndLists(t *testing.T) {
	fsys := setupFS(t)

	c, err := Collect(fsys, Options{
		Files:   []string{"a.jpg", "./a.jpg"},
		Lists:   []string{"/work/list.txt"},
		WorkDir: "/work",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg"}, c.Files)
	assert.Empty(t, c.Skipped)
}

func TestCollectMissingListFile(t *testing.T) {
	fsys := setupFS(t)

	_, err := Collect(fsys, Options{Lists: []string{"/work/nope.txt"}})
	require.Error(t, err)
	var lfe *ListFileError
	require.ErrorAs(t, err, &lfe)
	assert.Equal(t, "/work/nope.txt", lfe.Path)
	assert.True(t, fileutil.IsNotExist(err))
}

func TestCollectDirectoryWithoutRecursive(t *testing.T) {
	fsys := setupFS(t)

	c, err := Collect(fsys, Options{Files: []string{"album", "a.jpg"}, WorkDir: "/work"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg"}, c.Files)
	require.Len(t, c.Skipped, 1)
	assert.Equal(t, "album", c.Skipped[0].Path)
}

func TestCollectRecursive(t *testing.T) {
	fsys := setupFS(t)

	c, err := Collect(fsys, Options{Files: []string{"album"}, Recursive: true, WorkDir: "/work"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("album", "deep", "y.heic"),
		filepath.Join("album", "z.JPG"),
	}, c.Files)
}

func TestCollectRecursiveCustomInclude(t *testing.T) {
	fsys := setupFS(t)

	c, err := Collect(fsys, Options{
		Files:     []string{"/work/album"},
		Recursive: true,
		Include:   []string{"deep/*.png", "*.txt"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/work/album/deep/x.png", "/work/album/notes.txt"}, c.Files)
}

func TestCollectInvalidPattern(t *testing.T) {
	fsys := setupFS(t)

	_, err := Collect(fsys, Options{Include: []string{"[a-"}})
	assert.ErrorIs(t, err, ErrInvalidPattern)
}
