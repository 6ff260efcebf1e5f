package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/samsaffron/jarvis/internal/ui"
)

const (
	headerTitle    = "JARVIS"
	headerSubtitle = "AI Assistant"
)

// View renders the model
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	parts := []string{m.renderHeader(), m.transcript.View()}
	if m.errMsg != "" {
		parts = append(parts, m.renderError())
	}
	parts = append(parts, m.input.View())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) renderHeader() string {
	left := m.styles.Highlighted.Render(ui.RobotIcon+" "+headerTitle) + " " + m.styles.Subtitle.Render(headerSubtitle)
	hints := []string{
		m.keyMap.NewSession.Help().Key + " " + m.keyMap.NewSession.Help().Desc,
		m.keyMap.Quit.Help().Key + " " + m.keyMap.Quit.Help().Desc,
	}
	right := m.styles.Footer.Render(strings.Join(hints, " • "))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	line := left
	if gap >= 1 {
		line = left + strings.Repeat(" ", gap) + right
	}
	return m.styles.Header.Render(line)
}

func (m *Model) renderError() string {
	return m.styles.Error.Render(ui.Truncate(ui.FailIcon+" "+m.errMsg, max(m.width, 1)))
}

// layout gives the transcript whatever height the header, error line and
// input leave. The transcript is only resized when its size changes, so
// scrolling back is not undone by typing.
func (m *Model) layout() {
	used := lipgloss.Height(m.renderHeader()) + lipgloss.Height(m.input.View())
	if m.errMsg != "" {
		used += lipgloss.Height(m.renderError())
	}
	height := max(m.height-used, 1)

	if m.transcript.Width() != m.width || m.transcript.Height() != height {
		m.transcript.SetSize(m.width, height)
	}
}
