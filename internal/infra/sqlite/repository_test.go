package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhashe/vidsteps/internal/domain/entity"
)

func newTestRepo(t *testing.T) *StepRepository {
	t.Helper()
	repo, err := NewStepRepository(filepath.Join(t.TempDir(), "data.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSaveAndLoadSteps(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	steps := entity.NewStepList([]float64{0, 12.25, 47.8})
	require.NoError(t, repo.SaveSteps(ctx, "/videos/a.mp4", steps))

	loaded, err := repo.LoadSteps(ctx, "/videos/a.mp4")
	require.NoError(t, err)
	assert.Equal(t, steps.Timestamps, loaded.Timestamps)
}

func TestLoadStepsUnknownVideoReturnsEmpty(t *testing.T) {
	repo := newTestRepo(t)

	loaded, err := repo.LoadSteps(context.Background(), "/nowhere.mp4")
	require.NoError(t, err)
	assert.True(t, loaded.IsEmpty())
}

func TestSaveStepsOverwrites(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveSteps(ctx, "/v.mp4", entity.NewStepList([]float64{1, 2})))
	require.NoError(t, repo.SaveSteps(ctx, "/v.mp4", entity.NewStepList([]float64{5})))

	loaded, err := repo.LoadSteps(ctx, "/v.mp4")
	require.NoError(t, err)
	assert.Equal(t, []float64{5}, loaded.Timestamps)
}

func TestDeleteSteps(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveSteps(ctx, "/v.mp4", entity.NewStepList([]float64{1})))
	require.NoError(t, repo.DeleteSteps(ctx, "/v.mp4"))

	loaded, err := repo.LoadSteps(ctx, "/v.mp4")
	require.NoError(t, err)
	assert.True(t, loaded.IsEmpty())
}

func TestListVideos(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveSteps(ctx, "/b.mp4", entity.NewStepList([]float64{1})))
	require.NoError(t, repo.SaveSteps(ctx, "/a.mp4", entity.NewStepList([]float64{2})))

	videos, err := repo.ListVideos(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"/a.mp4", "/b.mp4"}, videos)
}

func TestHistoryAndStats(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveSteps(ctx, "/v.mp4", entity.NewStepList([]float64{1, 2})))

	now := time.Now().UTC()
	require.NoError(t, repo.SaveHistory(ctx, entity.HistoryRecord{
		ID:        uuid.New(),
		VideoPath: "/v.mp4",
		Mode:      entity.ModeRecording,
		StepCount: 2,
		StartedAt: now.Add(-time.Minute),
		EndedAt:   now,
	}))
	require.NoError(t, repo.SaveHistory(ctx, entity.HistoryRecord{
		ID:        uuid.New(),
		VideoPath: "/v.mp4",
		Mode:      entity.ModePlaying,
		StepCount: 2,
		StartedAt: now,
		EndedAt:   now.Add(time.Minute),
	}))

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalSessions)
	assert.Equal(t, 1, stats.Recordings)
	assert.Equal(t, 1, stats.Playbacks)
	assert.Equal(t, 1, stats.VideosTracked)
	assert.InDelta(t, 2.0, stats.AverageSteps, 0.001)
}
