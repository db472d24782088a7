package entity

// VideoInfo holds the probed metadata of a local video file.
type VideoInfo struct {
	Path     string
	Duration float64
	Width    int
	Height   int
	Format   string
}

// PlayStats aggregates the persisted session history.
type PlayStats struct {
	TotalSessions int     `json:"totalSessions"`
	Recordings    int     `json:"recordings"`
	Playbacks     int     `json:"playbacks"`
	VideosTracked int     `json:"videosTracked"`
	AverageSteps  float64 `json:"averageSteps"`
}
