// Package debug provides conditional "[DEBUG]" tracing to stderr.
//
// It is separate from pkg/log on purpose: debug lines are unstructured,
// free-form and only appear when --debug or IMAGELINK_DEBUG is set.
//
// Message format:
//
//	[DEBUG] message
//	[DEBUG] → Entering function
//	[DEBUG] ← Exiting function
//	[DEBUG] Label: value
package debug

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
)

// EnvVar is read by Init when debugging is not forced on.
const EnvVar = "IMAGELINK_DEBUG"

var (
	// Enabled indicates whether debug output is written.
	Enabled bool

	mu  sync.Mutex
	out io.Writer = os.Stderr
)

const debugPrefix = "[DEBUG] "

// Init sets Enabled. force wins; otherwise IMAGELINK_DEBUG is parsed as a bool
// and anything unparsable counts as false.
func Init(force bool) {
	if force {
		Enabled = true
		return
	}
	v := os.Getenv(EnvVar)
	if v == "" {
		Enabled = false
		return
	}
	b, err := strconv.ParseBool(v)
	Enabled = err == nil && b
}

// SetOutput redirects debug output and returns a restore function.
func SetOutput(w io.Writer) func() {
	mu.Lock()
	defer mu.Unlock()
	old := out
	out = w
	return func() {
		mu.Lock()
		defer mu.Unlock()
		out = old
	}
}

func write(s string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprint(out, s)
}

// Printf prints a debug message if debug logging is enabled.
func Printf(format string, args ...interface{}) {
	if Enabled {
		write(debugPrefix + fmt.Sprintf(format, args...) + "\n")
	}
}

// FunctionEnter logs entry into a function.
func FunctionEnter(funcName string) {
	if Enabled {
		write(fmt.Sprintf("%s→ Entering %s\n", debugPrefix, funcName))
	}
}

// FunctionExit logs exit from a function.
func FunctionExit(funcName string) {
	if Enabled {
		write(fmt.Sprintf("%s← Exiting %s\n", debugPrefix, funcName))
	}
}

// DumpValue prints value with %+v under label.
func DumpValue(label string, value interface{}) {
	if Enabled {
		write(fmt.Sprintf("%s%s: %+v\n", debugPrefix, label, value))
	}
}
