// Package exitcodes provides centralized exit code definitions and error handling for imagelink.
// Exit codes are organized in ranges to categorize different types of failures:
//
//	0:     Success
//	1-9:   Input/Configuration Errors (e.g., no input files, invalid layout)
//	10-19: Metadata/Link Processing Errors (e.g., unreadable EXIF, failed links)
//	20-29: Runtime Errors (e.g., I/O errors, system failures)
//	30-39: Internal Errors
package exitcodes

import (
	"errors"
	"fmt"
)

// Exit code constants organized by category
const (
	// Success (0)
	ExitSuccess = 0

	// Input/Configuration Errors (1-9)
	ExitNoInputFiles            = 1 // No files given on the command line or in list files
	ExitInputConfigurationError = 2 // General configuration error
	ExitListFileError           = 3 // A --list file could not be read
	ExitInvalidLayout           = 4 // The --layout template is invalid
	ExitConfigValidationError   = 5 // Config file failed schema validation
	ExitInvalidFieldList        = 6 // The --fields list names an unknown field

	// Processing Errors (10-19)
	ExitMetadataError  = 10 // Failed to read metadata from a file
	ExitPartialFailure = 11 // One or more files could not be linked

	// Runtime Errors (20-29)
	ExitGeneralRuntimeError = 20 // General runtime/system error
	ExitIOError             = 21 // IO operation error

	// Internal Errors (30-39)
	ExitInternalError = 30 // Internal error in command execution
)

// ExitCodeError wraps an error with an exit code so commands can return
// ordinary errors and still let main choose the process exit status.
type ExitCodeError struct {
	Code int   // Exit code to return
	Err  error // Underlying error
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d: %v", e.Code, e.Err)
}

func (e *ExitCodeError) Unwrap() error {
	return e.Err
}

// New is shorthand for building an ExitCodeError from a format string.
func New(code int, format string, args ...any) *ExitCodeError {
	return &ExitCodeError{Code: code, Err: fmt.Errorf(format, args...)}
}

// IsExitCodeError checks if an error is an ExitCodeError and returns its code.
// Returns false and 0 if the error is not an ExitCodeError.
func IsExitCodeError(err error) (int, bool) {
	var exitErr *ExitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}

// CodeFor returns the exit code for err: 0 for nil, the wrapped code for an
// ExitCodeError, ExitGeneralRuntimeError otherwise.
func CodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if code, ok := IsExitCodeError(err); ok {
		return code
	}
	return ExitGeneralRuntimeError
}

// CodeDescriptions maps exit codes to their human-readable descriptions
var CodeDescriptions = map[int]string{
	ExitSuccess:                 "Success",
	ExitNoInputFiles:            "No input files given",
	ExitInputConfigurationError: "General configuration error",
	ExitListFileError:           "List file could not be read",
	ExitInvalidLayout:           "Invalid link layout template",
	ExitConfigValidationError:   "Config file failed validation",
	ExitInvalidFieldList:        "Unknown metadata field in field list",
	ExitMetadataError:           "Failed to read image metadata",
	ExitPartialFailure:          "One or more files could not be linked",
	ExitGeneralRuntimeError:     "General runtime/system error",
	ExitIOError:                 "IO operation error",
	ExitInternalError:           "Internal error in command execution",
}
