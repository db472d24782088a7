package mpv

import "encoding/json"

// request is a command sent over the mpv JSON IPC socket, one JSON object per
// line.
type request struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

// message is anything mpv writes back: command replies carry request_id and
// error, asynchronous events carry event (and name/data for property
// changes).
type message struct {
	Error     string          `json:"error,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	RequestID int64           `json:"request_id,omitempty"`
	Event     string          `json:"event,omitempty"`
	ID        int64           `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Reason    string          `json:"reason,omitempty"`
}

const replySuccess = "success"

// Observed property ids.
const (
	observeTimePos int64 = iota + 1
	observeEOF
)
