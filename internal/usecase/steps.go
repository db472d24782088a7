package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/dhashe/vidsteps/internal/domain/entity"
	"github.com/dhashe/vidsteps/internal/domain/port"
)

// StepAdminUseCase backs the non-interactive subcommands that inspect or
// clear stored segmentations.
type StepAdminUseCase struct {
	repo   port.StepRepository
	logger *zap.Logger
}

func NewStepAdminUseCase(repo port.StepRepository, logger *zap.Logger) *StepAdminUseCase {
	return &StepAdminUseCase{repo: repo, logger: logger}
}

func (uc *StepAdminUseCase) Show(ctx context.Context, videoFile string) (string, entity.StepList, error) {
	path, err := ResolveVideoPath(videoFile)
	if err != nil {
		return "", entity.StepList{}, err
	}
	steps, err := uc.repo.LoadSteps(ctx, path)
	if err != nil {
		return "", entity.StepList{}, err
	}
	return path, steps, nil
}

func (uc *StepAdminUseCase) Clear(ctx context.Context, videoFile string) (string, error) {
	path, err := ResolveVideoPath(videoFile)
	if err != nil {
		return "", err
	}
	if err := uc.repo.DeleteSteps(ctx, path); err != nil {
		return "", err
	}
	uc.logger.Info("steps cleared", zap.String("video", path))
	return path, nil
}

func (uc *StepAdminUseCase) Videos(ctx context.Context) ([]string, error) {
	return uc.repo.ListVideos(ctx)
}

func (uc *StepAdminUseCase) Stats(ctx context.Context) (*entity.PlayStats, error) {
	return uc.repo.Stats(ctx)
}
