package port

import (
	"context"

	"github.com/dhashe/vidsteps/internal/domain/entity"
)

type Prober interface {
	Probe(ctx context.Context, videoPath string) (*entity.VideoInfo, error)
}
