package colors

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureOutput(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	var out, errOut bytes.Buffer
	oldOut, oldErr := Stdout, Stderr
	Stdout, Stderr = &out, &errOut
	t.Cleanup(func() {
		Stdout, Stderr = oldOut, oldErr
		SetQuiet(false)
		SetDebug(false)
		SetLogger(nil)
	})
	return &out, &errOut
}

type recordingLogger struct {
	entries []string
}

func (r *recordingLogger) Debug(msg string, args ...any) { r.entries = append(r.entries, "debug:"+msg) }
func (r *recordingLogger) Info(msg string, args ...any)  { r.entries = append(r.entries, "info:"+msg) }
func (r *recordingLogger) Warn(msg string, args ...any)  { r.entries = append(r.entries, "warn:"+msg) }
func (r *recordingLogger) Error(msg string, args ...any) { r.entries = append(r.entries, "error:"+msg) }

func TestError(t *testing.T) {
	_, errOut := captureOutput(t)

	Error("something went wrong")

	assert.Contains(t, errOut.String(), "Error:")
	assert.Contains(t, errOut.String(), "something went wrong")
	assert.Contains(t, errOut.String(), Red)
}

func TestSuccessAndQuiet(t *testing.T) {
	out, _ := captureOutput(t)

	Success("file uploaded")
	assert.Contains(t, out.String(), checkmark)
	assert.Contains(t, out.String(), "file uploaded")

	out.Reset()
	SetQuiet(true)
	Success("hidden")
	Info("hidden too")
	assert.Empty(t, out.String())
}

func TestDebugIsGated(t *testing.T) {
	_, errOut := captureOutput(t)

	SetDebug(false)
	Debug("nope")
	assert.Empty(t, errOut.String())

	SetDebug(true)
	Debug("yes")
	assert.Contains(t, errOut.String(), "Debug:")
}

func TestNotifyRoutesBySeverityAndMirrorsToLogger(t *testing.T) {
	out, errOut := captureOutput(t)
	rec := &recordingLogger{}
	SetLogger(rec)

	Notify("success", "done")
	Notify("error", "bad")
	Notify("warning", "careful")
	Notify("info", "fyi")

	assert.Contains(t, out.String(), "done")
	assert.Contains(t, out.String(), "fyi")
	assert.Contains(t, errOut.String(), "bad")
	assert.Contains(t, errOut.String(), "careful")
	assert.Equal(t, []string{"info:done", "error:bad", "warn:careful", "info:fyi"}, rec.entries)
}
