package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/dhashe/vidsteps/internal/domain/entity"
	"github.com/dhashe/vidsteps/internal/domain/port"
)

// SessionUseCase drives one interactive run: it decides the mode, feeds the
// player the right segment to loop, and persists step boundaries and history.
type SessionUseCase struct {
	repo   port.StepRepository
	player port.Player
	prober port.Prober
	logger *zap.Logger
}

func NewSessionUseCase(
	repo port.StepRepository,
	player port.Player,
	prober port.Prober,
	logger *zap.Logger,
) *SessionUseCase {
	return &SessionUseCase{
		repo:   repo,
		player: player,
		prober: prober,
		logger: logger,
	}
}

// ResolveVideoPath normalizes the user-supplied path to the canonical form
// used as the database key.
func ResolveVideoPath(videoFile string) (string, error) {
	abs, err := filepath.Abs(videoFile)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", videoFile, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", videoFile, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", resolved, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory, not a video file", resolved)
	}
	return resolved, nil
}

// Begin probes the video, loads any stored steps and starts playback. The run
// starts in recording mode when record is set or when no steps are stored,
// otherwise it starts playing the first step. It reports done when the first
// stored step starts at or beyond the end of the video, in which case there
// is nothing to play and the caller must end the session.
func (uc *SessionUseCase) Begin(ctx context.Context, videoFile string, record bool) (session *entity.Session, done bool, err error) {
	path, err := ResolveVideoPath(videoFile)
	if err != nil {
		return nil, false, err
	}

	info, err := uc.prober.Probe(ctx, path)
	if err != nil {
		return nil, false, fmt.Errorf("probe video: %w", err)
	}

	var steps entity.StepList
	if !record {
		steps, err = uc.repo.LoadSteps(ctx, path)
		if err != nil {
			return nil, false, err
		}
	}

	mode := entity.ModePlaying
	if record || steps.IsEmpty() {
		mode = entity.ModeRecording
		steps = entity.StepList{}
	}

	session = entity.NewSession(path, info.Duration, steps, mode)

	log := uc.logger.With(
		zap.String("session_id", session.ID.String()),
		zap.String("video", path),
	)
	log.Info("session started",
		zap.String("mode", string(mode)),
		zap.Float64("duration", info.Duration),
		zap.Int("steps", steps.Len()),
	)

	if err := uc.player.Load(ctx, path); err != nil {
		return nil, false, err
	}

	if mode == entity.ModeRecording {
		if err := uc.player.ClearLoop(ctx); err != nil {
			return nil, false, err
		}
		if err := uc.player.SetPaused(ctx, false); err != nil {
			return nil, false, err
		}
		return session, false, nil
	}

	done, err = uc.EnterStep(ctx, session)
	if err != nil {
		return nil, false, err
	}
	if done {
		// Stored steps start past the end of the file.
		log.Warn("no playable step at session start")
	}
	return session, done, nil
}

// EnterStep seeks to the current step and loops it. It reports done when the
// step starts at or beyond the end of the video, which ends the run.
func (uc *SessionUseCase) EnterStep(ctx context.Context, s *entity.Session) (done bool, err error) {
	if s.CurrentIdx >= s.Steps.Len() {
		return true, nil
	}

	start, end := s.Bounds()
	if start >= s.VideoDuration {
		uc.logger.Warn("step starts beyond video end",
			zap.Int("step", s.CurrentIdx),
			zap.Float64("start", start),
			zap.Float64("video_duration", s.VideoDuration),
		)
		return true, nil
	}

	if err := uc.player.LoopSegment(ctx, start, end); err != nil {
		return false, err
	}
	if err := uc.player.SeekTo(ctx, start); err != nil {
		return false, err
	}
	if err := uc.player.SetPaused(ctx, false); err != nil {
		return false, err
	}

	uc.logger.Debug("entered step",
		zap.Int("step", s.CurrentIdx),
		zap.Float64("start", start),
		zap.Float64("end", end),
	)
	return false, nil
}

// Advance moves the step cursor (+1 next, -1 previous, 0 restart) and enters
// the resulting step.
func (uc *SessionUseCase) Advance(ctx context.Context, s *entity.Session, delta int) (done bool, err error) {
	if s.Advance(delta) {
		return true, nil
	}
	return uc.EnterStep(ctx, s)
}

// AddStep records a step boundary at the current playback position.
func (uc *SessionUseCase) AddStep(ctx context.Context, s *entity.Session) (float64, error) {
	pos, err := uc.player.Position(ctx)
	if err != nil {
		return 0, err
	}
	s.AddStep(pos)
	uc.logger.Info("step recorded",
		zap.String("session_id", s.ID.String()),
		zap.Float64("timestamp", pos),
		zap.Int("steps", s.Steps.Len()),
	)
	return pos, nil
}

func (uc *SessionUseCase) SetPaused(ctx context.Context, paused bool) error {
	return uc.player.SetPaused(ctx, paused)
}

// FinishRecording persists the recorded steps, overwriting any stored ones,
// and switches the session to playing mode starting at the first step. It
// reports done when nothing was recorded, in which case there is nothing to
// play.
func (uc *SessionUseCase) FinishRecording(ctx context.Context, s *entity.Session) (done bool, err error) {
	if err := uc.repo.SaveSteps(ctx, s.VideoPath, s.Steps); err != nil {
		return false, err
	}
	uc.logger.Info("steps saved",
		zap.String("session_id", s.ID.String()),
		zap.Int("steps", s.Steps.Len()),
	)

	if s.Steps.IsEmpty() {
		return true, nil
	}

	s.Mode = entity.ModePlaying
	s.CurrentIdx = 0
	return uc.EnterStep(ctx, s)
}

// End closes out the session: steps recorded but not yet saved are persisted,
// a history row is written, and the player is told to quit.
func (uc *SessionUseCase) End(ctx context.Context, s *entity.Session) error {
	if s.Mode == entity.ModeRecording {
		if err := uc.repo.SaveSteps(ctx, s.VideoPath, s.Steps); err != nil {
			uc.logger.Error("failed to save steps at session end", zap.Error(err))
		}
	}

	s.MarkEnded()
	if err := uc.repo.SaveHistory(ctx, s.History()); err != nil {
		uc.logger.Error("failed to save history", zap.Error(err))
	}

	uc.logger.Info("session ended",
		zap.String("session_id", s.ID.String()),
		zap.String("mode", string(s.Mode)),
		zap.Int("steps", s.Steps.Len()),
	)

	return uc.player.Quit(ctx)
}
