package entity

import (
	"time"

	"github.com/google/uuid"
)

type Mode string

const (
	ModeRecording Mode = "RECORDING"
	ModePlaying   Mode = "PLAYING"
)

// Session is one interactive run against a single video, either recording
// step boundaries or playing them back step by step.
type Session struct {
	ID            uuid.UUID
	VideoPath     string
	VideoDuration float64
	Mode          Mode
	Steps         StepList
	CurrentIdx    int
	StartedAt     time.Time
	EndedAt       *time.Time
}

func NewSession(videoPath string, videoDuration float64, steps StepList, mode Mode) *Session {
	return &Session{
		ID:            uuid.New(),
		VideoPath:     videoPath,
		VideoDuration: videoDuration,
		Mode:          mode,
		Steps:         steps,
		CurrentIdx:    0,
		StartedAt:     time.Now().UTC(),
	}
}

// AddStep records a step boundary at the given playback position. Recording
// playback is forward-only, so the list stays ascending.
func (s *Session) AddStep(pos float64) {
	s.Steps.Add(pos)
}

// Advance moves the step cursor by delta (+1 next, -1 previous, 0 restart).
// The cursor never goes below zero. It reports true when the cursor has moved
// past the last step, which ends the session.
func (s *Session) Advance(delta int) (done bool) {
	s.CurrentIdx += delta
	if s.CurrentIdx < 0 {
		s.CurrentIdx = 0
	}
	return s.CurrentIdx >= s.Steps.Len()
}

// Bounds returns the [start, end) range of the current step.
func (s *Session) Bounds() (start, end float64) {
	return s.Steps.Bounds(s.CurrentIdx, s.VideoDuration)
}

func (s *Session) MarkEnded() {
	now := time.Now().UTC()
	s.EndedAt = &now
}

// HistoryRecord is the persisted summary of a finished session.
type HistoryRecord struct {
	ID        uuid.UUID
	VideoPath string
	Mode      Mode
	StepCount int
	StartedAt time.Time
	EndedAt   time.Time
}

func (s *Session) History() HistoryRecord {
	ended := time.Now().UTC()
	if s.EndedAt != nil {
		ended = *s.EndedAt
	}
	return HistoryRecord{
		ID:        s.ID,
		VideoPath: s.VideoPath,
		Mode:      s.Mode,
		StepCount: s.Steps.Len(),
		StartedAt: s.StartedAt,
		EndedAt:   ended,
	}
}
