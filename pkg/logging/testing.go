package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// TestLogger captures JSON log output for assertions in tests.
type TestLogger struct {
	*zerolog.Logger
	Buffer *bytes.Buffer
}

// NewTestLogger creates a trace level logger writing to a buffer. The
// global level is restored when the test ends.
func NewTestLogger(t testing.TB) *TestLogger {
	t.Helper()

	buf := &bytes.Buffer{}
	oldLevel := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(oldLevel) })

	logger := zerolog.New(buf).Level(zerolog.TraceLevel).With().Timestamp().Logger()
	return &TestLogger{Logger: &logger, Buffer: buf}
}

// Entries decodes every captured line. Lines that are not JSON are skipped.
func (tl *TestLogger) Entries() []map[string]any {
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(tl.Buffer.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err == nil {
			entries = append(entries, entry)
		}
	}
	return entries
}

// EntriesWithMessage returns the decoded entries whose message equals msg.
func (tl *TestLogger) EntriesWithMessage(msg string) []map[string]any {
	var out []map[string]any
	for _, entry := range tl.Entries() {
		if entry[zerolog.MessageFieldName] == msg {
			out = append(out, entry)
		}
	}
	return out
}

// AssertContains fails the test when the output lacks substr.
func (tl *TestLogger) AssertContains(t testing.TB, substr string) {
	t.Helper()
	if !strings.Contains(tl.Buffer.String(), substr) {
		t.Errorf("log output does not contain %q\noutput:\n%s", substr, tl.Buffer.String())
	}
}

// AssertNotContains fails the test when the output has substr.
func (tl *TestLogger) AssertNotContains(t testing.TB, substr string) {
	t.Helper()
	if strings.Contains(tl.Buffer.String(), substr) {
		t.Errorf("log output should not contain %q\noutput:\n%s", substr, tl.Buffer.String())
	}
}

// CaptureLoggingForTest installs a TestLogger as the default logger for the
// duration of the test.
func CaptureLoggingForTest(t testing.TB) *TestLogger {
	t.Helper()
	previous := *Default()
	tl := NewTestLogger(t)
	SetDefault(*tl.Logger)
	t.Cleanup(func() { SetDefault(previous) })
	return tl
}
