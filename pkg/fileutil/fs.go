package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// ErrSymlinkUnsupported is returned by symlink operations on filesystems
// that cannot create or read symbolic links (e.g. afero.MemMapFs).
var ErrSymlinkUnsupported = errors.New("filesystem does not support symbolic links")

// File is the read side of an open file. afero.File satisfies it.
type File interface {
	io.Closer
	io.Reader
	io.ReaderAt
	io.Seeker
	Name() string
	Stat() (os.FileInfo, error)
}

// FS defines the filesystem operations needed by imagelink.
//
//nolint:interfacebloat // mirrors the subset of afero.Fs plus its optional link capabilities
type FS interface {
	Open(name string) (File, error)
	Stat(name string) (os.FileInfo, error)
	Lstat(name string) (os.FileInfo, error)
	MkdirAll(path string, perm os.FileMode) error
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)
	Remove(name string) error
	ReadFile(filename string) ([]byte, error)
	WriteFile(filename string, data []byte, perm os.FileMode) error
	Walk(root string, fn filepath.WalkFunc) error
}

// AferoFS adapts an afero.Fs to our FS interface
type AferoFS struct {
	fs afero.Fs
}

// NewAferoFS creates a new AferoFS instance wrapping the provided afero.Fs
func NewAferoFS(fs afero.Fs) *AferoFS {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &AferoFS{fs: fs}
}

// Open opens a file for reading.
func (a *AferoFS) Open(name string) (File, error) {
	file, err := a.fs.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", name, err)
	}
	return file, nil
}

// Stat returns file info, following symlinks.
func (a *AferoFS) Stat(name string) (os.FileInfo, error) {
	info, err := a.fs.Stat(name)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", name, err)
	}
	return info, nil
}

// Lstat returns file info without following a final symlink. Filesystems
// without lstat support fall back to Stat.
func (a *AferoFS) Lstat(name string) (os.FileInfo, error) {
	if l, ok := a.fs.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(name)
		if err != nil {
			return nil, fmt.Errorf("failed to lstat %s: %w", name, err)
		}
		return info, nil
	}
	return a.Stat(name)
}

// MkdirAll creates a directory with all parent directories
func (a *AferoFS) MkdirAll(path string, perm os.FileMode) error {
	if err := a.fs.MkdirAll(path, perm); err != nil {
		return fmt.Errorf("failed to create directory path %s: %w", path, err)
	}
	return nil
}

// Symlink creates newname as a symbolic link to oldname.
func (a *AferoFS) Symlink(oldname, newname string) error {
	l, ok := a.fs.(afero.Linker)
	if !ok {
		return fmt.Errorf("symlink %s -> %s: %w", newname, oldname, ErrSymlinkUnsupported)
	}
	if err := l.SymlinkIfPossible(oldname, newname); err != nil {
		return fmt.Errorf("failed to symlink %s -> %s: %w", newname, oldname, err)
	}
	return nil
}

// Readlink returns the destination of the named symbolic link.
func (a *AferoFS) Readlink(name string) (string, error) {
	r, ok := a.fs.(afero.LinkReader)
	if !ok {
		return "", fmt.Errorf("readlink %s: %w", name, ErrSymlinkUnsupported)
	}
	dest, err := r.ReadlinkIfPossible(name)
	if err != nil {
		return "", fmt.Errorf("failed to read link %s: %w", name, err)
	}
	return dest, nil
}

// Remove removes a file or an empty directory.
func (a *AferoFS) Remove(name string) error {
	if err := a.fs.Remove(name); err != nil {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}

// ReadFile reads a file
func (a *AferoFS) ReadFile(filename string) ([]byte, error) {
	data, err := afero.ReadFile(a.fs, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return data, nil
}

// WriteFile writes a file
func (a *AferoFS) WriteFile(filename string, data []byte, perm os.FileMode) error {
	if err := afero.WriteFile(a.fs, filename, data, perm); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filename, err)
	}
	return nil
}

// Walk walks the tree rooted at root in lexical order.
func (a *AferoFS) Walk(root string, fn filepath.WalkFunc) error {
	return afero.Walk(a.fs, root, fn)
}

// DefaultFS is used when no filesystem is injected.
var DefaultFS FS = NewAferoFS(afero.NewOsFs())
