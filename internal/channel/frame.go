package channel

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/cristianoliveira/sendpanel/internal/domain"
)

// Outbound command names.
const (
	CommandStart = "start_bot"
	CommandStop  = "stop_bot"
)

// Frame is one JSON text message on the channel, in either direction.
// Seq is optional; when the worker numbers its frames, duplicates and
// replays within a session are dropped.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	Seq   int64           `json:"seq,omitempty"`
}

type startPayload struct {
	Filename string `json:"filename"`
	Limit    int    `json:"limit"`
	Delay    int    `json:"delay"`
	Message  string `json:"message"`
}

type eventPayload struct {
	Stats   *domain.RunStats `json:"stats"`
	Message string           `json:"message"`
}

// StartFrame encodes a start_bot command.
func StartFrame(cfg domain.RunConfig) (Frame, error) {
	data, err := json.Marshal(startPayload{
		Filename: cfg.SourceFileID,
		Limit:    cfg.MessageLimit,
		Delay:    cfg.DelayMillis,
		Message:  cfg.MessageTemplate,
	})
	if err != nil {
		return Frame{}, err
	}
	return Frame{Event: CommandStart, Data: data}, nil
}

// StopFrame encodes a stop_bot command.
func StopFrame() Frame {
	return Frame{Event: CommandStop, Data: json.RawMessage(`{}`)}
}

// DecodeFrame parses a text message from the worker.
func DecodeFrame(msg []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(msg, &f); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	if f.Event == "" {
		return Frame{}, fmt.Errorf("decode frame: missing event name")
	}
	return f, nil
}

// ToEvent converts an inbound frame into a domain event.
func (f Frame) ToEvent() (domain.Event, error) {
	name := domain.EventName(f.Event)
	if !name.IsValid() {
		return domain.Event{}, fmt.Errorf("unknown event %q", f.Event)
	}
	ev := domain.Event{Name: name}

	data := bytes.TrimSpace(f.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return ev, nil
	}
	var p eventPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return domain.Event{}, fmt.Errorf("decode %s payload: %w", f.Event, err)
	}
	ev.Stats = p.Stats
	ev.Message = p.Message
	return ev, nil
}
