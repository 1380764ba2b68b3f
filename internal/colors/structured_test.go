package colors

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredDebugIsGatedByDebugMode(t *testing.T) {
	_, errOut := captureOutput(t)
	EnableStructuredLogging()

	SetDebug(false)
	StructuredDebug("channel", "dial", "skipped", nil, "", nil)
	assert.Empty(t, errOut.String())

	SetDebug(true)
	StructuredError("channel", "dial", "failed", errors.New("refused"), "sess-1", map[string]any{"attempt": 2})

	line := strings.TrimSpace(errOut.String())
	var entry StructuredLogEntry
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, LevelError, entry.Level)
	assert.Equal(t, "channel", entry.Component)
	assert.Equal(t, "refused", entry.Error)
	assert.Equal(t, "sess-1", entry.ID)
	assert.EqualValues(t, 2, entry.Fields["attempt"])
}

func TestStructuredLoggingCanBeDisabled(t *testing.T) {
	_, errOut := captureOutput(t)
	SetDebug(true)
	DisableStructuredLogging()
	defer EnableStructuredLogging()

	StructuredInfo("tui", "start", "ok", nil, "", nil)

	assert.Empty(t, errOut.String())
}
