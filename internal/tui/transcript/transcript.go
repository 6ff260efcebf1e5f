package transcript

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/samsaffron/jarvis/internal/llm"
	"github.com/samsaffron/jarvis/internal/ui"
)

const (
	GreetingTitle = "JARVIS is ready"
	GreetingText  = "Hello! I'm JARVIS, your AI assistant. How may I assist you today?"
	ThinkingText  = "JARVIS is thinking..."

	// bubbles take at most this share of the width, in percent
	bubbleWidthPercent = 80
	minBubbleWidth     = 12
)

// Model is a scrollable, read-only view of the conversation. It never
// modifies the turns it is given.
type Model struct {
	viewport viewport.Model
	spinner  spinner.Model
	styles   *ui.Styles

	turns    []llm.Turn
	pending  bool
	markdown bool

	width  int
	height int
}

// New creates a transcript view. When markdown is true assistant turns are
// rendered with glamour; otherwise their text is shown verbatim.
func New(styles *ui.Styles, width, height int, markdown bool) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	vp := viewport.New(width, height)
	vp.Style = lipgloss.NewStyle()
	vp.KeyMap = viewport.KeyMap{
		PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
	}

	m := &Model{
		viewport: vp,
		spinner:  s,
		styles:   styles,
		markdown: markdown,
		width:    width,
		height:   height,
	}
	m.refresh()
	return m
}

// SetTurns replaces the displayed turns and scrolls to the newest content.
func (m *Model) SetTurns(turns []llm.Turn) {
	m.turns = turns
	m.refresh()
}

// SetPending toggles the thinking indicator and scrolls to the bottom. The
// returned command starts the spinner when the indicator appears.
func (m *Model) SetPending(pending bool) tea.Cmd {
	wasPending := m.pending
	m.pending = pending
	m.refresh()
	if pending && !wasPending {
		return m.spinner.Tick
	}
	return nil
}

// SetSize resizes the view and re-renders at the new width.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.refresh()
}

func (m *Model) Width() int  { return m.width }
func (m *Model) Height() int { return m.height }

// Pending reports whether the thinking indicator is shown.
func (m *Model) Pending() bool {
	return m.pending
}

// AtBottom reports whether the newest content is in view.
func (m *Model) AtBottom() bool {
	return m.viewport.AtBottom()
}

// Update handles spinner ticks and scrolling (PgUp/PgDn, mouse wheel).
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.viewport.SetContent(m.render())
		return m, cmd
	case tea.KeyMsg, tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) View() string {
	return m.viewport.View()
}

// refresh re-renders the content and scrolls to the bottom. Every change to
// turns, pending or size goes through here.
func (m *Model) refresh() {
	m.viewport.SetContent(m.render())
	m.viewport.GotoBottom()
}

func (m *Model) render() string {
	if m.width <= 0 {
		return ""
	}
	blocks := Layout(m.turns, m.pending)
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, m.renderBlock(b))
	}
	return strings.Join(parts, "\n\n")
}

func (m *Model) renderBlock(b Block) string {
	switch b.Kind {
	case BlockGreeting:
		return m.renderGreeting()
	case BlockThinking:
		bubble := m.styles.AssistantBubble.Render(m.spinner.View() + " " + m.styles.Muted.Render(ThinkingText))
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Left, bubble)
	default:
		return m.renderTurn(b)
	}
}

func (m *Model) renderGreeting() string {
	width := m.bubbleWidth()
	body := lipgloss.JoinVertical(lipgloss.Center,
		ui.RobotIcon,
		m.styles.Highlighted.Render(GreetingTitle),
		m.styles.Greeting.Width(width).Render(GreetingText),
	)
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, body)
}

func (m *Model) renderTurn(b Block) string {
	style := m.styles.AssistantBubble
	if b.Turn.Role == llm.RoleUser {
		style = m.styles.UserBubble
	}
	contentWidth := m.bubbleWidth() - style.GetHorizontalFrameSize()
	if contentWidth < 1 {
		contentWidth = 1
	}

	var body string
	if m.markdown && b.Turn.Role == llm.RoleAssistant {
		body = ui.RenderMarkdown(b.Turn.Content, contentWidth)
	} else {
		body = Wrap(b.Turn.Content, contentWidth)
	}

	if b.Turn.HasTimestamp() {
		stamp := m.styles.Timestamp.Render(b.Turn.Timestamp.Format("15:04"))
		align := lipgloss.Left
		if b.AlignRight {
			align = lipgloss.Right
		}
		body = lipgloss.JoinVertical(align, body, stamp)
	}

	pos := lipgloss.Left
	if b.AlignRight {
		pos = lipgloss.Right
	}
	return lipgloss.PlaceHorizontal(m.width, pos, style.Render(body))
}

func (m *Model) bubbleWidth() int {
	w := m.width * bubbleWidthPercent / 100
	if w < minBubbleWidth {
		w = min(m.width, minBubbleWidth)
	}
	return w
}

// Wrap breaks text at word boundaries to fit width, hard-wrapping words that
// are longer than a line. Line breaks and runs of spaces inside a line are
// kept.
func Wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return wrap.String(wordwrap.String(s, width), width)
}
