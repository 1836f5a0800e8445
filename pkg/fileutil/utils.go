package fileutil

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// IsNotExist reports whether err, possibly wrapped, means the path is missing.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// FileExists checks if a regular (non-directory) file exists at the given path
func FileExists(fsys FS, path string) (bool, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		if IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check if file exists: %w", err)
	}
	return !info.IsDir(), nil
}

// DirExists checks if a directory exists at the given path
func DirExists(fsys FS, path string) (bool, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		if IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat directory: %w", err)
	}
	return info.IsDir(), nil
}

// EnsureDirExists creates path and its parents when missing.
// It reports whether anything had to be created.
func EnsureDirExists(fsys FS, path string) (bool, error) {
	exists, err := DirExists(fsys, path)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if err := fsys.MkdirAll(path, ReadWriteExecuteUserReadExecuteOthers); err != nil {
		return false, fmt.Errorf("failed to create directory: %w", err)
	}
	return true, nil
}

// IsSymlink reports whether path is itself a symbolic link.
// A missing path is not an error.
func IsSymlink(fsys FS, path string) (bool, error) {
	info, err := fsys.Lstat(path)
	if err != nil {
		if IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode()&os.ModeSymlink != 0, nil
}

// ReadLines returns the trimmed lines of a text file, dropping blank lines
// and lines starting with '#'.
func ReadLines(fsys FS, path string) ([]string, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", path, err)
	}
	return lines, nil
}

// GetAbsPath returns the absolute path of a file
func GetAbsPath(path string) (string, error) {
	if path == "" {
		return "", errors.New("failed to get absolute path: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return abs, nil
}
