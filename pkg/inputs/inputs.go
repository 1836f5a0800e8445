// Package inputs assembles the list of files to process from command-line
// arguments, list files and (optionally) directory trees.
package inputs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/lucas-albers-lz4/imagelink/pkg/debug"
	"github.com/lucas-albers-lz4/imagelink/pkg/fileutil"
	"github.com/lucas-albers-lz4/imagelink/pkg/log"
)

// DefaultInclude selects the usual camera formats when walking directories.
var DefaultInclude = []string{"**/*.{jpg,jpeg,JPG,JPEG,tif,tiff,TIF,TIFF,heic,HEIC}"}

// ErrInvalidPattern is returned for malformed include patterns.
var ErrInvalidPattern = errors.New("invalid include pattern")

// ListFileError reports a list file that could not be read.
type ListFileError struct {
	Path string
	Err  error
}

func (e *ListFileError) Error() string {
	return fmt.Sprintf("failed to read list file %s: %v", e.Path, e.Err)
}

func (e *ListFileError) Unwrap() error { return e.Err }

// Options controls Collect.
type Options struct {
	// Files are positional arguments, kept in order.
	Files []string
	// Lists are files holding one path per line.
	Lists []string
	// Recursive walks directory arguments instead of skipping them.
	Recursive bool
	// Include patterns are matched against paths relative to the walked directory.
	Include []string
	// WorkDir resolves relative paths for the directory check. Empty means the
	// paths are used as given.
	WorkDir string
}

// Skipped is an argument that will not be processed.
type Skipped struct {
	Path   string
	Reason string
}

// Collection is the result of Collect.
type Collection struct {
	Files   []string
	Skipped []Skipped
}

// Collect expands opts into a de-duplicated, ordered list of files.
// Positional files come first, then list file entries.
func Collect(fsys fileutil.FS, opts Options) (*Collection, error) {
	include := opts.Include
	if len(include) == 0 {
		include = DefaultInclude
	}
	for _, p := range include {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, p)
		}
	}

	candidates := append([]string{}, opts.Files...)
	for _, list := range opts.Lists {
		lines, err := fileutil.ReadLines(fsys, list)
		if err != nil {
			return nil, &ListFileError{Path: list, Err: err}
		}
		debug.Printf("list file %s: %d entries", list, len(lines))
		candidates = append(candidates, lines...)
	}

	c := &Collection{}
	seen := make(map[string]bool, len(candidates))
	add := func(p string) {
		key := filepath.Clean(p)
		if seen[key] {
			debug.Printf("dropping duplicate %s", p)
			return
		}
		seen[key] = true
		c.Files = append(c.Files, p)
	}

	for _, arg := range candidates {
		info, err := fsys.Stat(resolve(opts.WorkDir, arg))
		if err != nil || !info.IsDir() {
			// Missing files are reported when they are opened.
			add(arg)
			continue
		}
		if !opts.Recursive {
			log.Warn("Skipping directory", "path", arg, "hint", "use --recursive")
			c.Skipped = append(c.Skipped, Skipped{Path: arg, Reason: "is a directory"})
			continue
		}
		files, err := walk(fsys, opts.WorkDir, arg, include)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f)
		}
	}
	return c, nil
}

func walk(fsys fileutil.FS, workDir, dir string, include []string) ([]string, error) {
	root := resolve(workDir, dir)
	var out []string
	err := fsys.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		slashRel := filepath.ToSlash(rel)
		for _, p := range include {
			if ok, _ := doublestar.Match(p, slashRel); ok {
				out = append(out, filepath.Join(dir, rel))
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	debug.Printf("walked %s: %d matching files", dir, len(out))
	return out, nil
}

func resolve(workDir, p string) string {
	if workDir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(workDir, p)
}
