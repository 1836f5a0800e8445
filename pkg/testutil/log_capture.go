package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/lucas-albers-lz4/imagelink/pkg/log"
	"github.com/stretchr/testify/assert"
)

// CaptureLogOutput redirects pkg/log output while testFunc runs and returns
// what was written. The previous writer and level are restored afterwards.
//
//	output, err := testutil.CaptureLogOutput(log.LevelDebug, func() {
//	    log.Info("linked", "file", "a.jpg")
//	})
func CaptureLogOutput(logLevel log.Level, testFunc func()) (string, error) {
	originalLevel := log.CurrentLevel()

	var logBuf bytes.Buffer
	restoreLog := log.SetOutput(&logBuf)
	defer restoreLog()

	log.SetLevel(logLevel)
	defer log.SetLevel(originalLevel)

	var panicErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = fmt.Errorf("panic during log capture: %v", r)
			}
		}()
		testFunc()
	}()

	return logBuf.String(), panicErr
}

// CaptureJSONLogs is CaptureLogOutput plus one json.Unmarshal per line.
// The logger must be in its default JSON format.
func CaptureJSONLogs(logLevel log.Level, testFunc func()) (string, []map[string]interface{}, error) {
	out, err := CaptureLogOutput(logLevel, testFunc)
	if err != nil {
		return out, nil, err
	}
	var parsed []map[string]interface{}
	for i, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return out, parsed, fmt.Errorf("failed to unmarshal log line %d as JSON: %w\nLine content: %s", i+1, err, line)
		}
		parsed = append(parsed, entry)
	}
	return out, parsed, nil
}

// AssertLogContainsJSON fails unless some entry contains every key/value in expected.
func AssertLogContainsJSON(t *testing.T, logs []map[string]interface{}, expected map[string]interface{}) {
	t.Helper()
	for _, entry := range logs {
		if containsAll(entry, expected) {
			return
		}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	for _, entry := range logs {
		_ = enc.Encode(entry) //nolint:errcheck // test helper
	}
	want, _ := json.MarshalIndent(expected, "", "  ") //nolint:errcheck // test helper
	assert.Fail(t, "Expected log entry not found",
		"Expected log containing:\n%s\n\nActual captured logs:\n%s", string(want), buf.String())
}

// containsAll compares top-level keys; JSON numbers are float64 so ints are converted.
func containsAll(actual, expected map[string]interface{}) bool {
	for key, want := range expected {
		got, ok := actual[key]
		if !ok {
			return false
		}
		if f, isFloat := got.(float64); isFloat {
			switch w := want.(type) {
			case float64:
				if f != w {
					return false
				}
			case int:
				if f != float64(w) {
					return false
				}
			case int64:
				if f != float64(w) {
					return false
				}
			default:
				return false
			}
			continue
		}
		if got != want {
			return false
		}
	}
	return true
}
