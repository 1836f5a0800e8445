// Package layout turns an EXIF timestamp into the relative path of a link.
package layout

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultTemplate files a photo taken 2019:07:04 12:30:00 under
// 2019/07/04/12-30-00-<name>.
const DefaultTemplate = "${y}/${m}/${d}/${H}-${M}-${S}-"

var (
	// ErrMalformedTimestamp is returned when a value is not a recognizable date and time.
	ErrMalformedTimestamp = errors.New("malformed timestamp")
	// ErrInvalidLayout is returned by New for unusable templates.
	ErrInvalidLayout = errors.New("invalid layout")
)

var timestampRegex = regexp.MustCompile(
	`(?P<y>\d{4})[:-](?P<m>\d{2})[:-](?P<d>\d{2})[ T](?P<H>\d{2}):(?P<M>\d{2}):(?P<S>\d{2})`)

var placeholderRegex = regexp.MustCompile(`\$(?:\{([^}]*)\}|([A-Za-z0-9_]+)|\$)`)

var knownPlaceholders = map[string]bool{"y": true, "m": true, "d": true, "H": true, "M": true, "S": true}

// Layout is a validated link path template.
type Layout struct {
	template string
}

// New validates template and returns a Layout. An empty template selects
// DefaultTemplate.
func New(template string) (*Layout, error) {
	if strings.TrimSpace(template) == "" {
		template = DefaultTemplate
	}
	if strings.HasPrefix(template, "/") || filepath.IsAbs(template) {
		return nil, fmt.Errorf("%w: %q must be relative", ErrInvalidLayout, template)
	}
	for _, seg := range strings.Split(template, "/") {
		if seg == ".." {
			return nil, fmt.Errorf("%w: %q must not contain '..'", ErrInvalidLayout, template)
		}
	}

	hasYear := false
	for _, m := range placeholderRegex.FindAllStringSubmatch(template, -1) {
		if m[0] == "$$" {
			continue
		}
		name := m[1]
		if name == "" {
			name = m[2]
		}
		if !knownPlaceholders[name] {
			return nil, fmt.Errorf("%w: unknown placeholder %q in %q (use $y $m $d $H $M $S, braced when followed by letters)",
				ErrInvalidLayout, m[0], template)
		}
		if name == "y" {
			hasYear = true
		}
	}
	if !hasYear {
		return nil, fmt.Errorf("%w: %q does not reference the year ($y)", ErrInvalidLayout, template)
	}
	return &Layout{template: template}, nil
}

// MustNew is New that panics on error.
func MustNew(template string) *Layout {
	l, err := New(template)
	if err != nil {
		panic(err)
	}
	return l
}

// String returns the template.
func (l *Layout) String() string { return l.template }

// Expand substitutes the first date and time found in timestamp into the
// template. Text around the match is discarded.
func (l *Layout) Expand(timestamp string) (string, error) {
	idx := timestampRegex.FindStringSubmatchIndex(timestamp)
	if idx == nil {
		return "", fmt.Errorf("%w: %q", ErrMalformedTimestamp, timestamp)
	}
	out := timestampRegex.ExpandString(nil, l.template, timestamp, idx)
	return string(out), nil
}

// LinkName returns the base name of file with spaces replaced by '-'.
func LinkName(file string) string {
	return strings.ReplaceAll(filepath.Base(file), " ", "-")
}

// Target returns the link path, relative to the output root, for a file
// taken at timestamp.
func (l *Layout) Target(timestamp, file string) (string, error) {
	prefix, err := l.Expand(timestamp)
	if err != nil {
		return "", err
	}
	return filepath.FromSlash(path.Clean(prefix + LinkName(file))), nil
}
