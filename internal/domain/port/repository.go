package port

import (
	"context"

	"github.com/dhashe/vidsteps/internal/domain/entity"
)

type StepRepository interface {
	SaveSteps(ctx context.Context, videoPath string, steps entity.StepList) error
	LoadSteps(ctx context.Context, videoPath string) (entity.StepList, error)
	DeleteSteps(ctx context.Context, videoPath string) error
	ListVideos(ctx context.Context) ([]string, error)

	SaveHistory(ctx context.Context, rec entity.HistoryRecord) error
	Stats(ctx context.Context) (*entity.PlayStats, error)

	Close() error
}
