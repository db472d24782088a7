package entity

// StepList is the ordered list of step start timestamps, in seconds, recorded
// for a single video. A step ends where the next one starts; the last step
// ends at the video duration.
type StepList struct {
	Timestamps []float64
}

func NewStepList(timestamps []float64) StepList {
	return StepList{Timestamps: timestamps}
}

func (s *StepList) Add(t float64) {
	if t < 0 {
		t = 0
	}
	s.Timestamps = append(s.Timestamps, t)
}

func (s StepList) Len() int {
	return len(s.Timestamps)
}

func (s StepList) IsEmpty() bool {
	return len(s.Timestamps) == 0
}

// Bounds returns the [start, end) range of step i. The end of the last step
// is the video duration.
func (s StepList) Bounds(i int, videoDuration float64) (start, end float64) {
	start = s.Timestamps[i]
	if i+1 < len(s.Timestamps) {
		end = s.Timestamps[i+1]
	} else {
		end = videoDuration
	}
	return start, end
}
