// Package metadata reads embedded image metadata (EXIF) and picks the capture
// timestamp from a prioritized list of fields.
//
// Decoding is delegated to third-party libraries behind the Decoder interface:
// GoexifDecoder handles JPEG and TIFF, ScanDecoder finds an EXIF blob inside
// any other container. Default returns both, chained.
package metadata

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Date field names, spelled the way both EXIF libraries name them.
const (
	DateTimeDigitized = "DateTimeDigitized"
	DateTimeOriginal  = "DateTimeOriginal"
	DateTime          = "DateTime"
)

// DefaultDateFields is the lookup order used when none is configured.
var DefaultDateFields = []string{DateTimeDigitized, DateTimeOriginal, DateTime}

var knownDateFields = map[string]string{
	strings.ToLower(DateTimeDigitized): DateTimeDigitized,
	strings.ToLower(DateTimeOriginal):  DateTimeOriginal,
	strings.ToLower(DateTime):          DateTime,
}

var (
	// ErrNoMetadata means no decoder found EXIF data in the file.
	ErrNoMetadata = errors.New("no EXIF metadata found")
	// ErrMissingField is matched by every *MissingFieldError.
	ErrMissingField = errors.New("missing metadata field")
	// ErrInvalidFieldList is returned by ParseFieldList.
	ErrInvalidFieldList = errors.New("invalid field list")
)

// MissingFieldError reports that none of the requested fields was present.
// Field is the first field of the list that was searched.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field %s", e.Field)
}

// Is makes errors.Is(err, ErrMissingField) true.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// Tag is one metadata field with its value rendered as text.
type Tag struct {
	Name  string `yaml:"name"`
	IFD   string `yaml:"ifd,omitempty"`
	Value string `yaml:"value"`
}

// Record is the decoded metadata of one file, tags in decoder order.
type Record struct {
	Decoder string `yaml:"decoder"`
	Tags    []Tag  `yaml:"tags"`
}

// Get returns the first tag called name.
func (r *Record) Get(name string) (Tag, bool) {
	if r == nil {
		return Tag{}, false
	}
	for _, t := range r.Tags {
		if t.Name == name {
			return t, true
		}
	}
	return Tag{}, false
}

// Decoder turns an image stream into a Record.
type Decoder interface {
	Name() string
	Decode(r io.ReadSeeker) (*Record, error)
}

// FirstOf returns the first field of fields present in rec with a usable value.
// Blank values and all-zero dates ("0000:00:00 00:00:00") count as absent.
func FirstOf(rec *Record, fields []string) (Tag, error) {
	for _, f := range fields {
		if t, ok := rec.Get(f); ok && !isUnsetValue(t.Value) {
			return t, nil
		}
	}
	first := "[unknown]"
	if len(fields) > 0 {
		first = fields[0]
	}
	return Tag{}, &MissingFieldError{Field: first}
}

func isUnsetValue(v string) bool {
	return strings.Trim(v, "0:-T \x00") == ""
}

// ParseFieldList parses a comma-separated list of date field names.
// Names are matched case-insensitively; duplicates are dropped.
func ParseFieldList(s string) ([]string, error) {
	return NormalizeFields(strings.Split(s, ","))
}

// NormalizeFields validates field names and returns their canonical spelling.
func NormalizeFields(names []string) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		canon, ok := knownDateFields[strings.ToLower(n)]
		if !ok {
			return nil, fmt.Errorf("%w: unknown field %q (want one of %s)",
				ErrInvalidFieldList, n, strings.Join(DefaultDateFields, ", "))
		}
		if !seen[canon] {
			seen[canon] = true
			out = append(out, canon)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no fields given", ErrInvalidFieldList)
	}
	return out, nil
}
