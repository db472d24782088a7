package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/dhashe/vidsteps/internal/domain/entity"
)

type Prober struct {
	binPath string
	logger  *zap.Logger
}

func NewProber(binPath string, logger *zap.Logger) *Prober {
	return &Prober{binPath: binPath, logger: logger}
}

func (p *Prober) Probe(ctx context.Context, videoPath string) (*entity.VideoInfo, error) {
	cmd := exec.CommandContext(ctx, p.binPath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height:format=duration,format_name",
		"-of", "default=noprint_wrappers=1",
		videoPath,
	)

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", videoPath, err)
	}

	info, err := parseProbeOutput(string(output))
	if err != nil {
		return nil, fmt.Errorf("parse ffprobe output for %s: %w", videoPath, err)
	}
	info.Path = videoPath

	p.logger.Info("video probed",
		zap.String("path", videoPath),
		zap.Float64("duration", info.Duration),
		zap.Int("width", info.Width),
		zap.Int("height", info.Height),
	)

	return info, nil
}

// parseProbeOutput reads ffprobe's flat key=value output.
func parseProbeOutput(output string) (*entity.VideoInfo, error) {
	info := &entity.VideoInfo{}

	for _, line := range strings.Split(output, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		switch key {
		case "duration":
			d, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("parse duration %q: %w", value, err)
			}
			info.Duration = d
		case "width":
			w, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("parse width %q: %w", value, err)
			}
			info.Width = w
		case "height":
			h, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("parse height %q: %w", value, err)
			}
			info.Height = h
		case "format_name":
			info.Format = value
		}
	}

	if info.Duration <= 0 {
		return nil, fmt.Errorf("no duration in ffprobe output")
	}
	return info, nil
}
