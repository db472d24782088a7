package port

import "context"

type EventKind int

const (
	// EventPosition carries the current playback position in seconds.
	EventPosition EventKind = iota
	// EventEndOfFile fires when playback reaches the end of the video.
	EventEndOfFile
)

type PlayerEvent struct {
	Kind     EventKind
	Position float64
}

// Player controls an external video player showing a single file. Events()
// delivers position updates and end-of-file notifications; the channel is
// closed when the player goes away.
type Player interface {
	Load(ctx context.Context, videoPath string) error
	SetPaused(ctx context.Context, paused bool) error
	SeekTo(ctx context.Context, seconds float64) error
	LoopSegment(ctx context.Context, start, end float64) error
	ClearLoop(ctx context.Context) error
	Position(ctx context.Context) (float64, error)
	Events() <-chan PlayerEvent
	Quit(ctx context.Context) error
}
