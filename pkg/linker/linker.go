// Package linker builds the date-organized symlink tree: for every input file
// it reads the capture time, computes the link path and creates a symbolic
// link pointing back at the original.
package linker

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/lucas-albers-lz4/imagelink/pkg/debug"
	"github.com/lucas-albers-lz4/imagelink/pkg/fileutil"
	"github.com/lucas-albers-lz4/imagelink/pkg/layout"
	"github.com/lucas-albers-lz4/imagelink/pkg/log"
	"github.com/lucas-albers-lz4/imagelink/pkg/metadata"
)

// DefaultMinSize is the size below which files are taken for thumbnails.
const DefaultMinSize = 100 * 1024

// Options configures a Linker.
type Options struct {
	// OutputRoot is where the dated tree is created. Relative to WorkDir.
	OutputRoot string
	// Base is inserted between the climb back to WorkDir and the file path
	// in link sources.
	Base string
	// WorkDir resolves relative inputs. Defaults to the process working directory.
	WorkDir string
	Layout  *layout.Layout
	// Fields is the date field priority list.
	Fields []string
	// MinSize skips smaller files. Zero disables the check.
	MinSize int64
	// DryRun plans without touching the filesystem.
	DryRun bool
	// Absolute makes link sources absolute paths.
	Absolute bool
	// Force replaces existing entries at the link path.
	Force bool
}

// Linker processes files with a fixed set of Options.
type Linker struct {
	fs      fileutil.FS
	decoder metadata.Decoder
	opts    Options
	absRoot string
	// directories a dry run has already planned to create
	plannedDirs map[string]bool
}

// New validates opts and fills in defaults.
func New(fsys fileutil.FS, decoder metadata.Decoder, opts Options) (*Linker, error) {
	if fsys == nil {
		fsys = fileutil.DefaultFS
	}
	if decoder == nil {
		decoder = metadata.Default()
	}
	if opts.Layout == nil {
		opts.Layout = layout.MustNew(layout.DefaultTemplate)
	}
	if len(opts.Fields) == 0 {
		opts.Fields = metadata.DefaultDateFields
	}
	if opts.MinSize < 0 {
		return nil, fmt.Errorf("minimum size must not be negative, got %d", opts.MinSize)
	}
	if opts.WorkDir == "" {
		wd, err := fileutil.GetAbsPath(".")
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		opts.WorkDir = wd
	}
	if !filepath.IsAbs(opts.WorkDir) {
		abs, err := fileutil.GetAbsPath(opts.WorkDir)
		if err != nil {
			return nil, err
		}
		opts.WorkDir = abs
	}
	return &Linker{
		fs:          fsys,
		decoder:     decoder,
		opts:        opts,
		absRoot:     push(opts.WorkDir, opts.OutputRoot),
		plannedDirs: map[string]bool{},
	}, nil
}

// Options returns the effective options.
func (l *Linker) Options() Options { return l.opts }

// LinkFile runs the whole pipeline for one file. Errors are reported in the
// Result, never returned.
func (l *Linker) LinkFile(ctx context.Context, file string) Result {
	res := Result{File: file}
	fail := func(err error) Result {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	rec, err := l.readMetadata(file, &res)
	if err != nil {
		return fail(err)
	}
	if res.Outcome == OutcomeSkipped {
		return res
	}

	tag, err := metadata.FirstOf(rec, l.opts.Fields)
	if err != nil {
		return fail(fmt.Errorf("%w in input file '%s'", err, file))
	}
	res.Field, res.Timestamp = tag.Name, tag.Value
	debug.Printf("%s: using %s=%q", file, tag.Name, tag.Value)

	rel, err := l.opts.Layout.Target(tag.Value, file)
	if err != nil {
		return fail(fmt.Errorf("%s %s of '%s': %w", tag.Name, tag.Value, file, err))
	}
	res.Link = filepath.Join(l.absRoot, rel)
	res.Source, err = l.linkSource(res.Link, file)
	if err != nil {
		return fail(err)
	}

	if err := l.ensureParent(&res); err != nil {
		return fail(err)
	}

	skip, err := l.checkExisting(&res)
	if err != nil {
		return fail(err)
	}
	if skip {
		return res
	}

	if l.opts.DryRun {
		res.Outcome = OutcomePlanned
		return res
	}
	if err := l.fs.Symlink(res.Source, res.Link); err != nil {
		return fail(fmt.Errorf("failed to link %s -> %s: %w", res.Link, res.Source, err))
	}
	res.Outcome = OutcomeLinked
	return res
}

func (l *Linker) readMetadata(file string, res *Result) (*metadata.Record, error) {
	path := push(l.opts.WorkDir, file)
	f, err := l.fs.Open(path)
	if err != nil {
		return nil, &FileError{Path: file, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Debug("Failed to close input", "file", file, "error", cerr)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return nil, &FileError{Path: file, Err: err}
	}
	if info.IsDir() {
		return nil, &FileError{Path: file, Err: errors.New("is a directory")}
	}
	if l.opts.MinSize > 0 && info.Size() < l.opts.MinSize {
		res.Outcome = OutcomeSkipped
		res.Reason = "too small (thumbnail?)"
		return nil, nil
	}

	rec, err := l.decoder.Decode(f)
	if err != nil {
		return nil, &ParseError{Path: file, Err: err}
	}
	return rec, nil
}

// linkSource computes what the link at link should contain.
func (l *Linker) linkSource(link, file string) (string, error) {
	rel := push(l.opts.Base, file)
	if filepath.IsAbs(rel) {
		return rel, nil
	}
	abs := push(l.opts.WorkDir, rel)
	if l.opts.Absolute {
		return abs, nil
	}
	src, err := filepath.Rel(filepath.Dir(link), abs)
	if err != nil {
		return "", fmt.Errorf("failed to compute link source for '%s': %w", file, err)
	}
	return src, nil
}

func (l *Linker) ensureParent(res *Result) error {
	dir := filepath.Dir(res.Link)
	if l.opts.DryRun {
		if l.plannedDirs[dir] {
			return nil
		}
		exists, err := fileutil.DirExists(l.fs, dir)
		if err != nil {
			return err
		}
		if !exists {
			l.plannedDirs[dir] = true
			res.CreatedDir = dir
		}
		return nil
	}
	created, err := fileutil.EnsureDirExists(l.fs, dir)
	if err != nil {
		return err
	}
	if created {
		res.CreatedDir = dir
	}
	return nil
}

// checkExisting reports whether the file is already handled. Without Force an
// occupied link path is an error; with it the entry is removed (unless this
// is a dry run).
func (l *Linker) checkExisting(res *Result) (bool, error) {
	if _, err := l.fs.Lstat(res.Link); err != nil {
		if fileutil.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	isLink, err := fileutil.IsSymlink(l.fs, res.Link)
	if err != nil {
		return false, err
	}
	if isLink {
		dest, err := l.fs.Readlink(res.Link)
		if err != nil {
			return false, err
		}
		if dest == res.Source {
			res.Outcome = OutcomeSkipped
			res.Reason = "already linked"
			return true, nil
		}
	}

	if !l.opts.Force {
		return false, fmt.Errorf("%w: %s (use --force to replace)", ErrTargetExists, res.Link)
	}
	if l.opts.DryRun {
		return false, nil
	}
	log.Info("Replacing existing entry", "link", res.Link)
	if err := l.fs.Remove(res.Link); err != nil {
		return false, err
	}
	return false, nil
}

// Run processes files in order. A failing file never stops the run; a
// cancelled context does, and its error is returned with the partial summary.
func (l *Linker) Run(ctx context.Context, files []string, onResult func(Result)) (*Summary, error) {
	debug.FunctionEnter("Linker.Run")
	defer debug.FunctionExit("Linker.Run")

	sum := &Summary{}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			log.Warn("Run interrupted", "remaining", len(files)-sum.Total())
			return sum, err
		}
		r := l.LinkFile(ctx, file)
		logResult(r)
		sum.Add(r)
		if onResult != nil {
			onResult(r)
		}
	}
	return sum, nil
}

func logResult(r Result) {
	lg := log.With("file", r.File, "outcome", string(r.Outcome))
	switch r.Outcome {
	case OutcomeFailed:
		lg.Error("Failed to link file", "error", r.Err)
	case OutcomeSkipped:
		lg.Info("Skipped file", "reason", r.Reason)
	default:
		lg.Info("Processed file", "link", r.Link, "source", r.Source, "field", r.Field)
	}
}

// push joins elements the way a path stack does: an absolute element
// discards everything before it.
func push(elems ...string) string {
	p := ""
	for _, e := range elems {
		if e == "" {
			continue
		}
		if filepath.IsAbs(e) {
			p = e
			continue
		}
		p = filepath.Join(p, e)
	}
	return filepath.Clean(p)
}
