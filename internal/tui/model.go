package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/dhashe/vidsteps/internal/domain/entity"
	"github.com/dhashe/vidsteps/internal/domain/port"
	"github.com/dhashe/vidsteps/internal/usecase"
)

const callTimeout = 2 * time.Second

type positionMsg float64

type eofMsg struct{}

type playerGoneMsg struct{}

// Model is the terminal UI for one session. The video itself plays in the
// mpv window; the terminal shows mode, progress and step markers, and owns
// the keyboard.
type Model struct {
	uc      *usecase.SessionUseCase
	session *entity.Session
	events  <-chan port.PlayerEvent
	logger  *zap.Logger

	position float64
	paused   bool
	width    int
	quitting bool
	err      error
}

func NewModel(
	uc *usecase.SessionUseCase,
	session *entity.Session,
	events <-chan port.PlayerEvent,
	logger *zap.Logger,
) Model {
	return Model{
		uc:      uc,
		session: session,
		events:  events,
		logger:  logger,
		width:   80,
	}
}

// Err reports the error that ended the session, if any.
func (m Model) Err() error {
	return m.err
}

func waitForEvent(ch <-chan port.PlayerEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return playerGoneMsg{}
		}
		switch ev.Kind {
		case port.EventEndOfFile:
			return eofMsg{}
		default:
			return positionMsg(ev.Position)
		}
	}
}

func (m Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case positionMsg:
		m.position = float64(msg)
		return m, waitForEvent(m.events)

	case eofMsg:
		return m.handleEOF()

	case playerGoneMsg:
		if !m.quitting {
			m.logger.Warn("player went away, ending session")
			m.endSession()
		}
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Keys shared by both modes.
	switch key {
	case "ctrl+c", "q":
		m.endSession()
		return m, tea.Quit
	case "p":
		m.paused = !m.paused
		m.call(func(ctx context.Context) error {
			return m.uc.SetPaused(ctx, m.paused)
		})
		return m, nil
	}

	if m.session.Mode == entity.ModeRecording {
		return m.handleRecordingKey(key)
	}
	return m.handlePlayingKey(key)
}

func (m Model) handleRecordingKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case " ", "enter":
		m.call(func(ctx context.Context) error {
			_, err := m.uc.AddStep(ctx, m.session)
			return err
		})
	}
	return m, nil
}

func (m Model) handlePlayingKey(key string) (tea.Model, tea.Cmd) {
	var delta int
	switch key {
	case "enter", " ", "right", "j", "l":
		delta = 1
	case "left", "k", "h":
		delta = -1
	case "0", "backspace":
		delta = 0
	default:
		return m, nil
	}

	var done bool
	m.call(func(ctx context.Context) error {
		var err error
		done, err = m.uc.Advance(ctx, m.session, delta)
		return err
	})
	if done || m.err != nil {
		m.endSession()
		return m, tea.Quit
	}
	m.paused = false
	return m, nil
}

func (m Model) handleEOF() (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, nil
	}

	if m.session.Mode == entity.ModeRecording {
		var done bool
		m.call(func(ctx context.Context) error {
			var err error
			done, err = m.uc.FinishRecording(ctx, m.session)
			return err
		})
		if done || m.err != nil {
			m.endSession()
			return m, tea.Quit
		}
		m.paused = false
		return m, waitForEvent(m.events)
	}

	// The last step ends at the video duration, where the A-B loop cannot
	// wrap past keep-open. Re-enter the step to keep it looping.
	var done bool
	m.call(func(ctx context.Context) error {
		var err error
		done, err = m.uc.EnterStep(ctx, m.session)
		return err
	})
	if done || m.err != nil {
		m.endSession()
		return m, tea.Quit
	}
	m.paused = false
	return m, waitForEvent(m.events)
}

// call runs a usecase operation with a bounded timeout, recording the first
// failure.
func (m *Model) call(fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	if err := fn(ctx); err != nil && m.err == nil {
		m.logger.Error("player call failed", zap.Error(err))
		m.err = err
	}
}

func (m *Model) endSession() {
	if m.quitting {
		return
	}
	m.quitting = true
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.uc.End(ctx, m.session); err != nil {
		m.logger.Error("session end failed", zap.Error(err))
	}
}
