package exitcodes

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCodeError_Error(t *testing.T) {
	testCases := []struct {
		name     string
		code     int
		err      error
		expected string
	}{
		{
			name:     "with simple error message",
			code:     ExitNoInputFiles,
			err:      errors.New("no input files"),
			expected: "exit code 1: no input files",
		},
		{
			name:     "with formatted error message",
			code:     ExitListFileError,
			err:      fmt.Errorf("failed to read list %s", "photos.txt"),
			expected: "exit code 3: failed to read list photos.txt",
		},
		{
			name:     "with nil error",
			code:     ExitSuccess,
			err:      nil,
			expected: "exit code 0: <nil>",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			exitErr := &ExitCodeError{
				Code: tc.code,
				Err:  tc.err,
			}
			if got := exitErr.Error(); got != tc.expected {
				t.Errorf("Error() = %q, want %q", got, tc.expected)
			}
		})
	}
}

func TestExitCodeError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	exitErr := &ExitCodeError{
		Code: ExitIOError,
		Err:  originalErr,
	}

	if unwrapped := exitErr.Unwrap(); !errors.Is(unwrapped, originalErr) {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, originalErr)
	}
	if !errors.Is(exitErr, originalErr) {
		t.Errorf("errors.Is through ExitCodeError failed")
	}
}

func TestNew(t *testing.T) {
	err := New(ExitInvalidLayout, "bad layout %q", "$q")
	if err.Code != ExitInvalidLayout {
		t.Errorf("Code = %d, want %d", err.Code, ExitInvalidLayout)
	}
	if err.Err.Error() != `bad layout "$q"` {
		t.Errorf("Err = %q", err.Err.Error())
	}
}

func TestIsExitCodeError(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantCode   int
		wantIsExit bool
	}{
		{
			name:       "exit code error",
			err:        &ExitCodeError{Code: ExitPartialFailure, Err: errors.New("2 files failed")},
			wantCode:   ExitPartialFailure,
			wantIsExit: true,
		},
		{
			name:       "wrapped exit code error",
			err:        fmt.Errorf("context: %w", &ExitCodeError{Code: ExitIOError, Err: errors.New("io error")}),
			wantCode:   ExitIOError,
			wantIsExit: true,
		},
		{
			name:       "regular error",
			err:        errors.New("regular error"),
			wantCode:   0,
			wantIsExit: false,
		},
		{
			name:       "nil error",
			err:        nil,
			wantCode:   0,
			wantIsExit: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gotCode, gotIsExit := IsExitCodeError(tc.err)
			if gotCode != tc.wantCode || gotIsExit != tc.wantIsExit {
				t.Errorf("IsExitCodeError() = (%d, %v), want (%d, %v)",
					gotCode, gotIsExit, tc.wantCode, tc.wantIsExit)
			}
		})
	}
}

func TestCodeFor(t *testing.T) {
	if got := CodeFor(nil); got != ExitSuccess {
		t.Errorf("CodeFor(nil) = %d", got)
	}
	if got := CodeFor(errors.New("plain")); got != ExitGeneralRuntimeError {
		t.Errorf("CodeFor(plain) = %d", got)
	}
	if got := CodeFor(New(ExitConfigValidationError, "bad")); got != ExitConfigValidationError {
		t.Errorf("CodeFor(exit) = %d", got)
	}
}

func TestCodeDescriptionsCoverAllCodes(t *testing.T) {
	codes := []int{
		ExitSuccess, ExitNoInputFiles, ExitInputConfigurationError, ExitListFileError,
		ExitInvalidLayout, ExitConfigValidationError, ExitInvalidFieldList,
		ExitMetadataError, ExitPartialFailure, ExitGeneralRuntimeError,
		ExitIOError, ExitInternalError,
	}
	for _, c := range codes {
		if _, ok := CodeDescriptions[c]; !ok {
			t.Errorf("missing description for exit code %d", c)
		}
	}
}
