package testutil

import (
	"bytes"
	"io"
	"sync"
	"testing"

	"github.com/lucas-albers-lz4/imagelink/pkg/log"
)

// mutex serializes swaps of the global logger writer.
var mutex sync.Mutex

// SuppressLogging discards pkg/log output until the returned function is called.
func SuppressLogging() func() {
	mutex.Lock()
	defer mutex.Unlock()
	restore := log.SetOutput(io.Discard)
	return func() {
		mutex.Lock()
		defer mutex.Unlock()
		restore()
	}
}

// UseTestLogger buffers pkg/log output for the duration of the test and
// prints it through t.Logf only when the test fails.
func UseTestLogger(t *testing.T) {
	t.Helper()
	if testing.Verbose() {
		return
	}
	mutex.Lock()
	var buf bytes.Buffer
	restore := log.SetOutput(&buf)
	mutex.Unlock()

	t.Cleanup(func() {
		mutex.Lock()
		restore()
		mutex.Unlock()
		if t.Failed() {
			t.Logf("Log output captured during test:\n%s", buf.String())
		}
	})
}
