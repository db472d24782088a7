package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dhashe/vidsteps/internal/domain/entity"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	recStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	modeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	clipStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	fullStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	trackStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	tickStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	pauseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
)

const (
	recordingHelp = "p pause · space/enter add step · q quit"
	playingHelp   = "p pause · enter/space/→/j/l next · ←/k/h prev · 0/⌫ restart · q quit"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	name := filepath.Base(m.session.VideoPath)
	header := titleStyle.Render("vidsteps: " + name)
	switch m.session.Mode {
	case entity.ModeRecording:
		header += "  " + recStyle.Render("● REC")
	case entity.ModePlaying:
		header += "  " + modeStyle.Render(fmt.Sprintf("step %d/%d",
			m.session.CurrentIdx+1, m.session.Steps.Len()))
	}
	if m.paused {
		header += "  " + pauseStyle.Render("⏸ paused")
	}
	b.WriteString(header)
	b.WriteString("\n\n")

	barWidth := m.width - 2
	if barWidth < 10 {
		barWidth = 10
	}

	if m.session.Mode == entity.ModePlaying {
		start, end := m.session.Bounds()
		frac := 0.0
		if end > start {
			frac = (m.position - start) / (end - start)
		}
		b.WriteString(" " + renderBar(barWidth, frac, clipStyle, nil, 0))
		b.WriteString(fmt.Sprintf("  %s / %s\n",
			fmtTime(m.position-start), fmtTime(end-start)))
	} else {
		b.WriteString(fmt.Sprintf(" steps recorded: %d\n", m.session.Steps.Len()))
	}

	overall := 0.0
	if m.session.VideoDuration > 0 {
		overall = m.position / m.session.VideoDuration
	}
	b.WriteString(" " + renderBar(barWidth, overall, fullStyle,
		m.session.Steps.Timestamps, m.session.VideoDuration))
	b.WriteString(fmt.Sprintf("  %s / %s\n\n",
		fmtTime(m.position), fmtTime(m.session.VideoDuration)))

	if m.session.Mode == entity.ModeRecording {
		b.WriteString(helpStyle.Render(recordingHelp))
	} else {
		b.WriteString(helpStyle.Render(playingHelp))
	}
	b.WriteString("\n")

	return b.String()
}

// renderBar draws a progress bar, optionally overlaying tick marks at the
// given timestamps (scaled by duration).
func renderBar(width int, frac float64, fill lipgloss.Style, ticks []float64, duration float64) string {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(frac * float64(width))
	if filled > width {
		filled = width
	}

	cells := make([]string, width)
	for i := 0; i < width; i++ {
		if i < filled {
			cells[i] = fill.Render("█")
		} else {
			cells[i] = trackStyle.Render("░")
		}
	}

	if duration > 0 {
		for _, t := range ticks {
			pos := int(t / duration * float64(width))
			if pos >= 0 && pos < width {
				cells[pos] = tickStyle.Render("│")
			}
		}
	}

	return strings.Join(cells, "")
}

func fmtTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
