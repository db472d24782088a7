package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dhashe/vidsteps/internal/domain/entity"
	"github.com/dhashe/vidsteps/internal/domain/port"
	"github.com/dhashe/vidsteps/internal/usecase"
)

type fakePlayer struct {
	paused   *bool
	seeks    []float64
	loops    [][2]float64
	position float64
	quit     bool
	events   chan port.PlayerEvent
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{events: make(chan port.PlayerEvent, 8)}
}

func (p *fakePlayer) Load(context.Context, string) error { return nil }
func (p *fakePlayer) SetPaused(_ context.Context, paused bool) error {
	p.paused = &paused
	return nil
}
func (p *fakePlayer) SeekTo(_ context.Context, s float64) error { p.seeks = append(p.seeks, s); return nil }
func (p *fakePlayer) LoopSegment(_ context.Context, a, b float64) error {
	p.loops = append(p.loops, [2]float64{a, b})
	return nil
}
func (p *fakePlayer) ClearLoop(context.Context) error { return nil }
func (p *fakePlayer) Position(context.Context) (float64, error) { return p.position, nil }
func (p *fakePlayer) Events() <-chan port.PlayerEvent { return p.events }
func (p *fakePlayer) Quit(context.Context) error { p.quit = true; return nil }

type fakeRepo struct {
	steps   map[string][]float64
	history []entity.HistoryRecord
}

func (r *fakeRepo) SaveSteps(_ context.Context, path string, steps entity.StepList) error {
	r.steps[path] = append([]float64(nil), steps.Timestamps...)
	return nil
}
func (r *fakeRepo) LoadSteps(_ context.Context, path string) (entity.StepList, error) {
	return entity.NewStepList(r.steps[path]), nil
}
func (r *fakeRepo) DeleteSteps(context.Context, string) error     { return nil }
func (r *fakeRepo) ListVideos(context.Context) ([]string, error)  { return nil, nil }
func (r *fakeRepo) SaveHistory(_ context.Context, rec entity.HistoryRecord) error {
	r.history = append(r.history, rec)
	return nil
}
func (r *fakeRepo) Stats(context.Context) (*entity.PlayStats, error) { return &entity.PlayStats{}, nil }
func (r *fakeRepo) Close() error                                     { return nil }

type fakeProber struct{ duration float64 }

func (p *fakeProber) Probe(_ context.Context, path string) (*entity.VideoInfo, error) {
	return &entity.VideoInfo{Path: path, Duration: p.duration}, nil
}

type harness struct {
	model  Model
	player *fakePlayer
	repo   *fakeRepo
	video  string
}

func newHarness(t *testing.T, stored []float64, record bool) *harness {
	t.Helper()

	video := filepath.Join(t.TempDir(), "video.mp4")
	require.NoError(t, os.WriteFile(video, []byte("x"), 0o644))
	video, err := filepath.EvalSymlinks(video)
	require.NoError(t, err)

	repo := &fakeRepo{steps: map[string][]float64{}}
	if stored != nil {
		repo.steps[video] = stored
	}
	player := newFakePlayer()

	uc := usecase.NewSessionUseCase(repo, player, &fakeProber{duration: 60}, zap.NewNop())
	session, done, err := uc.Begin(context.Background(), video, record)
	require.NoError(t, err)
	require.False(t, done)

	return &harness{
		model:  NewModel(uc, session, player.events, zap.NewNop()),
		player: player,
		repo:   repo,
		video:  video,
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestRecordingAddStepKeys(t *testing.T) {
	h := newHarness(t, nil, true)

	h.player.position = 4.5
	m, _ := update(t, h.model, key(" "))

	h.player.position = 10.0
	m, _ = update(t, m, key("enter"))

	assert.Equal(t, []float64{4.5, 10}, m.session.Steps.Timestamps)
}

func TestRecordingQuitSavesSteps(t *testing.T) {
	h := newHarness(t, nil, true)

	h.player.position = 3.0
	m, _ := update(t, h.model, key(" "))
	m, cmd := update(t, m, key("q"))

	assert.True(t, isQuit(cmd))
	assert.True(t, h.player.quit)
	assert.Equal(t, []float64{3}, h.repo.steps[h.video])
	assert.Len(t, h.repo.history, 1)
}

func TestRecordingEOFSwitchesToPlaying(t *testing.T) {
	h := newHarness(t, nil, true)

	h.player.position = 5.0
	m, _ := update(t, h.model, key(" "))
	m, _ = update(t, m, eofMsg{})

	assert.False(t, h.player.quit)
	assert.Equal(t, entity.ModePlaying, m.session.Mode)
	assert.Equal(t, []float64{5}, h.repo.steps[h.video])
	require.NotEmpty(t, h.player.loops)
	assert.Equal(t, [2]float64{5, 60}, h.player.loops[len(h.player.loops)-1])
}

func TestPlayingNextAndPrevKeys(t *testing.T) {
	h := newHarness(t, []float64{0, 10, 30}, false)

	m, _ := update(t, h.model, key("l"))
	assert.Equal(t, 1, m.session.CurrentIdx)

	m, _ = update(t, m, key("h"))
	assert.Equal(t, 0, m.session.CurrentIdx)

	// Never below step zero.
	m, _ = update(t, m, key("h"))
	assert.Equal(t, 0, m.session.CurrentIdx)

	m, _ = update(t, m, key("0"))
	assert.Equal(t, 0, m.session.CurrentIdx)
	assert.Equal(t, [2]float64{0, 10}, h.player.loops[len(h.player.loops)-1])
}

func TestPlayingPastLastStepQuits(t *testing.T) {
	h := newHarness(t, []float64{0, 30}, false)

	m, _ := update(t, h.model, key("l"))
	_, cmd := update(t, m, key("l"))

	assert.True(t, isQuit(cmd))
	assert.True(t, h.player.quit)
	assert.Len(t, h.repo.history, 1)
}

func TestPlayingEOFReentersStepUnpaused(t *testing.T) {
	h := newHarness(t, []float64{0, 30}, false)

	m, _ := update(t, h.model, key("p"))
	m, _ = update(t, m, eofMsg{})

	// Re-entering the step resumed playback, so the pause badge must clear.
	assert.False(t, m.paused)
	assert.NotContains(t, m.View(), "paused")
	assert.Equal(t, [2]float64{0, 30}, h.player.loops[len(h.player.loops)-1])
}

func TestPauseToggle(t *testing.T) {
	h := newHarness(t, []float64{0}, false)

	m, _ := update(t, h.model, key("p"))
	require.NotNil(t, h.player.paused)
	assert.True(t, *h.player.paused)

	_, _ = update(t, m, key("p"))
	assert.False(t, *h.player.paused)
}

func TestViewRecording(t *testing.T) {
	h := newHarness(t, nil, true)

	m, _ := update(t, h.model, positionMsg(12))
	view := m.View()

	assert.Contains(t, view, "REC")
	assert.Contains(t, view, "video.mp4")
	assert.Contains(t, view, "00:12 / 01:00")
}

func TestViewPlaying(t *testing.T) {
	h := newHarness(t, []float64{0, 30}, false)

	m, _ := update(t, h.model, positionMsg(15))
	view := m.View()

	assert.Contains(t, view, "step 1/2")
	assert.True(t, strings.Contains(view, "00:15 / 00:30"), "clip-relative time shown")
}
