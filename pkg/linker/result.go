package linker

import (
	"errors"
	"fmt"
)

// Outcome classifies what happened to one input file.
type Outcome string

// Outcomes, also used as the metrics label values.
const (
	OutcomeLinked  Outcome = "linked"
	OutcomePlanned Outcome = "planned"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Outcomes lists every Outcome in report order.
var Outcomes = []Outcome{OutcomeLinked, OutcomePlanned, OutcomeSkipped, OutcomeFailed}

// ErrTargetExists means the link path is taken by something other than the
// expected link and --force was not given.
var ErrTargetExists = errors.New("target already exists")

// FileError reports a file that could not be opened or inspected.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("failed to open input file '%s': %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// ParseError reports a file whose metadata could not be decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse EXIF data of '%s': %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Result describes the handling of one file.
type Result struct {
	File    string
	Outcome Outcome
	// Reason is a short human explanation for skipped files.
	Reason string
	Err    error

	Field     string
	Timestamp string
	// Link is the path of the symlink, Source what it points to.
	Link   string
	Source string
	// CreatedDir is the directory made (or, in a dry run, to be made) for Link.
	CreatedDir string
}

// Summary tallies the results of a run.
type Summary struct {
	Results []Result
	counts  map[Outcome]int
}

// Add records r.
func (s *Summary) Add(r Result) {
	if s.counts == nil {
		s.counts = make(map[Outcome]int, len(Outcomes))
	}
	s.counts[r.Outcome]++
	s.Results = append(s.Results, r)
}

// Count returns how many results had outcome o.
func (s *Summary) Count(o Outcome) int {
	return s.counts[o]
}

// Total is the number of recorded results.
func (s *Summary) Total() int {
	return len(s.Results)
}

// Failed returns the failed results.
func (s *Summary) Failed() []Result {
	var out []Result
	for _, r := range s.Results {
		if r.Outcome == OutcomeFailed {
			out = append(out, r)
		}
	}
	return out
}
