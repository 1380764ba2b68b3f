package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/cristianoliveira/sendpanel/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler records every message by type.
type recordingHandler struct {
	errors   []string
	warnings []string
	infos    []string
	success  []string
}

func (h *recordingHandler) Error(msg string)   { h.errors = append(h.errors, msg) }
func (h *recordingHandler) Warning(msg string) { h.warnings = append(h.warnings, msg) }
func (h *recordingHandler) Info(msg string)    { h.infos = append(h.infos, msg) }
func (h *recordingHandler) Success(msg string) { h.success = append(h.success, msg) }

// recordingOutput records ColorOutput calls.
type recordingOutput struct {
	recordingHandler
}

func (o *recordingOutput) Error(msgs ...string)   { o.recordingHandler.Error(msgs[0]) }
func (o *recordingOutput) Warning(msgs ...string) { o.recordingHandler.Warning(msgs[0]) }
func (o *recordingOutput) Info(msgs ...string)    { o.recordingHandler.Info(msgs[0]) }
func (o *recordingOutput) Success(msgs ...string) { o.recordingHandler.Success(msgs[0]) }

func TestCLIHandlerForwards(t *testing.T) {
	out := &recordingOutput{}
	h := NewCLIHandler(out)

	h.Error("e")
	h.Warning("w")
	h.Info("i")
	h.Success("s")

	assert.Equal(t, []string{"e"}, out.errors)
	assert.Equal(t, []string{"w"}, out.warnings)
	assert.Equal(t, []string{"i"}, out.infos)
	assert.Equal(t, []string{"s"}, out.success)
}

func TestKindOfAndIs(t *testing.T) {
	wrapped := fmt.Errorf("upload: %w", Validation("submit", "Tipo de archivo no permitido"))

	assert.Equal(t, KindValidation, KindOf(wrapped))
	assert.Equal(t, "Tipo de archivo no permitido", Message(wrapped))
	assert.True(t, stderrors.Is(wrapped, &Error{Kind: KindValidation}))
	assert.False(t, stderrors.Is(wrapped, &Error{Kind: KindTransport}))
	assert.Equal(t, KindUnknown, KindOf(stderrors.New("plain")))

	cause := stderrors.New("connection refused")
	terr := Transport("dial", "Disconnected from worker", cause)
	assert.ErrorIs(t, terr, cause)
	assert.Equal(t, "dial: Disconnected from worker", terr.Error())
}

func TestReporterRoutesByKind(t *testing.T) {
	var logs bytes.Buffer
	h := &recordingHandler{}
	r := NewReporter(h, logging.New(&logs, "debug"))

	r.Report(Validation("start", "Please select a contacts file"))
	r.Report(Channel("run", "El bot ya está ejecutándose"))
	r.Report(Transport("channel", "Disconnected from worker", stderrors.New("EOF")))
	r.Report(Persistence("prefs.load", stderrors.New("invalid character")))
	r.Report(stderrors.New("unexpected"))
	r.Report(nil)

	assert.Equal(t, []string{"Please select a contacts file", "El bot ya está ejecutándose", "unexpected"}, h.errors)
	assert.Equal(t, []string{"Disconnected from worker"}, h.warnings)
	assert.Empty(t, h.infos)
	require.Contains(t, logs.String(), "persistence failure")
	require.Contains(t, logs.String(), "invalid character")
}
