package linker

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucas-albers-lz4/imagelink/pkg/debug"
	"github.com/lucas-albers-lz4/imagelink/pkg/fileutil"
	"github.com/lucas-albers-lz4/imagelink/pkg/layout"
	"github.com/lucas-albers-lz4/imagelink/pkg/metadata"
	"github.com/lucas-albers-lz4/imagelink/pkg/testutil"
)

const photoSize = 110 * 1024

var photo = testutil.ExifFields{
	Make:              "Canon",
	DateTime:          "2019:07:04 18:00:00",
	DateTimeOriginal:  "2019:07:04 12:34:56",
	DateTimeDigitized: "2019:07:04 12:35:00",
}

type fixture struct {
	dir string
	fs  fileutil.FS
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need developer mode on windows")
	}
	testutil.UseTestLogger(t)
	dir := t.TempDir()
	osfs := afero.NewOsFs()
	testutil.WriteFile(t, osfs, filepath.Join(dir, "in", "IMG 0001.jpg"), testutil.ExifJPEG(photo, photoSize))
	testutil.WriteFile(t, osfs, filepath.Join(dir, "in", "b.jpg"), testutil.ExifJPEG(testutil.ExifFields{
		DateTimeOriginal: "2019:07:04 08:00:00",
	}, photoSize))
	testutil.WriteFile(t, osfs, filepath.Join(dir, "in", "thumb.jpg"), testutil.ExifJPEG(photo, 2048))
	testutil.WriteFile(t, osfs, filepath.Join(dir, "in", "plain.jpg"), testutil.PlainJPEG(photoSize))
	testutil.WriteFile(t, osfs, filepath.Join(dir, "in", "nodate.jpg"), testutil.ExifJPEG(testutil.ExifFields{Make: "Nikon"}, photoSize))
	return &fixture{dir: dir, fs: fileutil.NewAferoFS(osfs)}
}

func (f *fixture) linker(t *testing.T, opts Options) *Linker {
	t.Helper()
	if opts.WorkDir == "" {
		opts.WorkDir = f.dir
	}
	if opts.MinSize == 0 {
		opts.MinSize = DefaultMinSize
	}
	l, err := New(f.fs, metadata.Default(), opts)
	require.NoError(t, err)
	return l
}

func TestLinkFileRelative(t *testing.T) {
	f := newFixture(t)
	l := f.linker(t, Options{})

	res := l.LinkFile(context.Background(), "in/IMG 0001.jpg")
	require.NoError(t, res.Err)
	assert.Equal(t, OutcomeLinked, res.Outcome)
	assert.Equal(t, metadata.DateTimeDigitized, res.Field)

	wantLink := filepath.Join(f.dir, "2019", "07", "04", "12-35-00-IMG-0001.jpg")
	assert.Equal(t, wantLink, res.Link)
	assert.Equal(t, filepath.Join("..", "..", "..", "in", "IMG 0001.jpg"), res.Source)
	assert.Equal(t, filepath.Join(f.dir, "2019", "07", "04"), res.CreatedDir)

	dest, err := os.Readlink(wantLink)
	require.NoError(t, err)
	assert.Equal(t, res.Source, dest)

	info, err := os.Stat(wantLink)
	require.NoError(t, err, "link must resolve to the original")
	assert.Equal(t, int64(photoSize), info.Size())
}

func TestLinkFileOutputRootAndBase(t *testing.T) {
	f := newFixture(t)
	l := f.linker(t, Options{OutputRoot: "out", Base: "mnt"})

	res := l.LinkFile(context.Background(), "in/b.jpg")
	require.NoError(t, res.Err)
	assert.Equal(t, filepath.Join(f.dir, "out", "2019", "07", "04", "08-00-00-b.jpg"), res.Link)
	assert.Equal(t, filepath.Join("..", "..", "..", "..", "mnt", "in", "b.jpg"), res.Source)
}

func TestLinkFileAbsolute(t *testing.T) {
	f := newFixture(t)
	l := f.linker(t, Options{Absolute: true, OutputRoot: filepath.Join(f.dir, "abs")})

	res := l.LinkFile(context.Background(), "in/b.jpg")
	require.NoError(t, res.Err)
	assert.Equal(t, filepath.Join(f.dir, "in", "b.jpg"), res.Source)
	assert.True(t, filepath.IsAbs(res.Source))
	assert.Equal(t, filepath.Join(f.dir, "abs", "2019", "07", "04", "08-00-00-b.jpg"), res.Link)
}

func TestLinkFileAbsoluteBase(t *testing.T) {
	f := newFixture(t)
	base := filepath.Join(string(filepath.Separator), "srv", "photos")
	l := f.linker(t, Options{Base: base, DryRun: true})

	res := l.LinkFile(context.Background(), "in/b.jpg")
	require.NoError(t, res.Err)
	assert.Equal(t, OutcomePlanned, res.Outcome)
	assert.Equal(t, filepath.Join(base, "in", "b.jpg"), res.Source)
}

func TestLinkFileAbsoluteInput(t *testing.T) {
	f := newFixture(t)
	l := f.linker(t, Options{Base: "mnt"})
	file := filepath.Join(f.dir, "in", "b.jpg")

	res := l.LinkFile(context.Background(), file)
	require.NoError(t, res.Err)
	assert.Equal(t, file, res.Source)

	info, err := os.Stat(res.Link)
	require.NoError(t, err, "link must resolve to the original")
	assert.Equal(t, int64(photoSize), info.Size())
}

func TestLinkFileFieldPriority(t *testing.T) {
	f := newFixture(t)
	l := f.linker(t, Options{Fields: []string{metadata.DateTime}, DryRun: true})

	res := l.LinkFile(context.Background(), "in/IMG 0001.jpg")
	require.NoError(t, res.Err)
	assert.Equal(t, metadata.DateTime, res.Field)
	assert.Equal(t, "18-00-00-IMG-0001.jpg", filepath.Base(res.Link))
}

func TestLinkFileCustomLayout(t *testing.T) {
	f := newFixture(t)
	l := f.linker(t, Options{Layout: layout.MustNew("$y/$m/"), DryRun: true})

	res := l.LinkFile(context.Background(), "in/b.jpg")
	require.NoError(t, res.Err)
	assert.Equal(t, filepath.Join(f.dir, "2019", "07", "b.jpg"), res.Link)
	assert.Equal(t, filepath.Join("..", "..", "in", "b.jpg"), res.Source)
}

func TestLinkFileFailures(t *testing.T) {
	f := newFixture(t)
	l := f.linker(t, Options{})

	res := l.LinkFile(context.Background(), "in/missing.jpg")
	assert.Equal(t, OutcomeFailed, res.Outcome)
	var fe *FileError
	assert.ErrorAs(t, res.Err, &fe)

	res = l.LinkFile(context.Background(), "in/plain.jpg")
	assert.Equal(t, OutcomeFailed, res.Outcome)
	var pe *ParseError
	assert.ErrorAs(t, res.Err, &pe)
	assert.ErrorIs(t, res.Err, metadata.ErrNoMetadata)

	res = l.LinkFile(context.Background(), "in/nodate.jpg")
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.ErrorIs(t, res.Err, metadata.ErrMissingField)
	assert.Contains(t, res.Err.Error(), "missing field DateTimeDigitized in input file 'in/nodate.jpg'")

	res = l.LinkFile(context.Background(), "in")
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.ErrorAs(t, res.Err, &fe)
}

func TestLinkFileThumbnail(t *testing.T) {
	f := newFixture(t)

	res := f.linker(t, Options{}).LinkFile(context.Background(), "in/thumb.jpg")
	assert.Equal(t, OutcomeSkipped, res.Outcome)
	assert.Equal(t, "too small (thumbnail?)", res.Reason)
	assert.NoError(t, res.Err)

	l, err := New(f.fs, nil, Options{WorkDir: f.dir, DryRun: true})
	require.NoError(t, err)
	res = l.LinkFile(context.Background(), "in/thumb.jpg")
	assert.Equal(t, OutcomePlanned, res.Outcome, "zero MinSize disables the size check")
}

func TestLinkFileExistingTarget(t *testing.T) {
	f := newFixture(t)
	l := f.linker(t, Options{})
	ctx := context.Background()

	first := l.LinkFile(ctx, "in/b.jpg")
	require.Equal(t, OutcomeLinked, first.Outcome)

	again := l.LinkFile(ctx, "in/b.jpg")
	assert.Equal(t, OutcomeSkipped, again.Outcome)
	assert.Equal(t, "already linked", again.Reason)

	other := f.linker(t, Options{Base: "elsewhere"})
	conflict := other.LinkFile(ctx, "in/b.jpg")
	assert.Equal(t, OutcomeFailed, conflict.Outcome)
	assert.ErrorIs(t, conflict.Err, ErrTargetExists)

	forced := f.linker(t, Options{Base: "elsewhere", Force: true})
	res := forced.LinkFile(ctx, "in/b.jpg")
	require.NoError(t, res.Err)
	assert.Equal(t, OutcomeLinked, res.Outcome)
	dest, err := os.Readlink(res.Link)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("..", "..", "..", "elsewhere", "in", "b.jpg"), dest)
}

func TestLinkFileRegularFileInTheWay(t *testing.T) {
	f := newFixture(t)
	blocker := filepath.Join(f.dir, "2019", "07", "04", "08-00-00-b.jpg")
	testutil.WriteFile(t, afero.NewOsFs(), blocker, []byte("not a link"))

	res := f.linker(t, Options{}).LinkFile(context.Background(), "in/b.jpg")
	assert.ErrorIs(t, res.Err, ErrTargetExists)

	res = f.linker(t, Options{Force: true}).LinkFile(context.Background(), "in/b.jpg")
	require.NoError(t, res.Err)
	assert.Equal(t, OutcomeLinked, res.Outcome)
}

func TestDryRunTouchesNothing(t *testing.T) {
	f := newFixture(t)
	l := f.linker(t, Options{DryRun: true})

	sum, err := l.Run(context.Background(), []string{"in/IMG 0001.jpg", "in/b.jpg"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Count(OutcomePlanned))

	dir := filepath.Join(f.dir, "2019", "07", "04")
	assert.Equal(t, dir, sum.Results[0].CreatedDir)
	assert.Empty(t, sum.Results[1].CreatedDir, "a planned directory is only reported once")

	_, err = os.Stat(filepath.Join(f.dir, "2019"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunTalliesAndContinues(t *testing.T) {
	f := newFixture(t)
	l := f.linker(t, Options{})

	var seen []string
	sum, err := l.Run(context.Background(),
		[]string{"in/plain.jpg", "in/IMG 0001.jpg", "in/thumb.jpg", "in/b.jpg", "in/nodate.jpg"},
		func(r Result) { seen = append(seen, r.File) })
	require.NoError(t, err)

	assert.Equal(t, 5, sum.Total())
	assert.Equal(t, 2, sum.Count(OutcomeLinked))
	assert.Equal(t, 1, sum.Count(OutcomeSkipped))
	assert.Equal(t, 2, sum.Count(OutcomeFailed))
	assert.Len(t, sum.Failed(), 2)
	assert.Equal(t, []string{"in/plain.jpg", "in/IMG 0001.jpg", "in/thumb.jpg", "in/b.jpg", "in/nodate.jpg"}, seen)
}

func TestRunDebugTrace(t *testing.T) {
	f := newFixture(t)
	l := f.linker(t, Options{DryRun: true})

	orig := debug.Enabled
	t.Cleanup(func() { debug.Enabled = orig })
	var buf bytes.Buffer
	t.Cleanup(debug.SetOutput(&buf))
	debug.Enabled = true

	_, err := l.Run(context.Background(), []string{"in/b.jpg"}, nil)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Entering Linker.Run")
	assert.Contains(t, out, `in/b.jpg: using DateTimeOriginal="2019:07:04 08:00:00"`)
	assert.Contains(t, out, "Exiting Linker.Run")
}

func TestRunCancelled(t *testing.T) {
	f := newFixture(t)
	l := f.linker(t, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	sum, err := l.Run(ctx, []string{"in/b.jpg", "in/IMG 0001.jpg"}, func(Result) { cancel() })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, sum.Total())
}

func TestNewRejectsNegativeMinSize(t *testing.T) {
	_, err := New(fileutil.NewAferoFS(afero.NewMemMapFs()), nil, Options{WorkDir: "/w", MinSize: -1})
	assert.Error(t, err)
}

func TestPush(t *testing.T) {
	sep := string(filepath.Separator)
	assert.Equal(t, filepath.Join("a", "b", "c"), push("a", "", "b", "c"))
	assert.Equal(t, sep+filepath.Join("abs", "c"), push("a", sep+"abs", "c"))
	assert.Equal(t, filepath.Join("..", "x"), push("a", "..", "..", "x"))
	assert.Equal(t, ".", push())
}
