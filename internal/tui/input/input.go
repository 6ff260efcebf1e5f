// Package input is the message composer: a growing text box with voice
// dictation, a hint line and a character counter.
package input

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/samsaffron/jarvis/internal/ui"
	"github.com/samsaffron/jarvis/internal/voice"
)

const (
	PlaceholderIdle     = "Ask JARVIS anything..."
	PlaceholderDisabled = "JARVIS is processing..."

	SendHint      = "Press Enter to send, Alt+Enter for new line"
	SendingHint   = "Sending..."
	VoiceHint     = "• Voice input available (Ctrl+R)"
	ListeningHint = "Listening... (Esc to stop)"
	DismissHint   = "Press any key to continue"

	// CounterLimit is the advisory length shown next to the character count.
	// Input is never truncated.
	CounterLimit = 1000

	minHeight = 1
	maxHeight = 5
)

// SendMsg is emitted when the user submits a non-empty message.
type SendMsg struct {
	Text string
}

// dictationMsg carries the outcome of one capture session.
type dictationMsg struct {
	id   int
	text string
	err  error
}

// Model is the input control. The host decides when it is disabled; the
// control owns its text, its dictation state and its alerts.
type Model struct {
	textarea textarea.Model
	keys     KeyMap
	styles   *ui.Styles

	recognizer voice.Recognizer // nil when dictation is unavailable
	locale     string

	disabled    bool
	listening   bool
	dictationID int
	cancel      context.CancelFunc

	// alert blocks the control until any key is pressed
	alert string

	width int
}

// New creates an input control. recognizer may be nil, in which case the
// dictation hint is hidden and Ctrl+R explains why.
func New(styles *ui.Styles, recognizer voice.Recognizer, locale string, width int) *Model {
	if locale == "" {
		locale = voice.DefaultLocale
	}

	ta := textarea.New()
	ta.Placeholder = PlaceholderIdle
	ta.Prompt = ""
	ta.ShowLineNumbers = false
	ta.CharLimit = 0 // No limit
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle()
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(styles.Theme().Muted)
	ta.FocusedStyle.EndOfBuffer = lipgloss.NewStyle()
	ta.BlurredStyle = ta.FocusedStyle
	ta.Focus()

	m := &Model{
		textarea:   ta,
		keys:       DefaultKeyMap(),
		styles:     styles,
		recognizer: recognizer,
		locale:     locale,
	}
	m.SetWidth(width)
	return m
}

// SetDisabled blocks submission, dictation and typing while a reply is
// pending.
func (m *Model) SetDisabled(disabled bool) {
	m.disabled = disabled
	if disabled {
		m.textarea.Placeholder = PlaceholderDisabled
		m.textarea.Blur()
		return
	}
	m.textarea.Placeholder = PlaceholderIdle
	m.textarea.Focus()
}

// SetWidth resizes the control.
func (m *Model) SetWidth(width int) {
	m.width = width
	inner := width - m.styles.InputBorder.GetHorizontalFrameSize()
	if inner < 1 {
		inner = 1
	}
	m.textarea.SetWidth(inner)
	m.updateHeight()
}

func (m *Model) Disabled() bool { return m.disabled }

func (m *Model) Listening() bool { return m.listening }

func (m *Model) Value() string { return m.textarea.Value() }

// Alert is the blocking message currently shown, if any.
func (m *Model) Alert() string { return m.alert }

// VoiceEnabled reports whether a dictation backend was detected.
func (m *Model) VoiceEnabled() bool { return m.recognizer != nil }

// Height is the number of rows the text box currently occupies.
func (m *Model) Height() int {
	return m.textarea.Height()
}

// Close stops any capture in progress.
func (m *Model) Close() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// Update handles keys and dictation results. It returns a command producing
// SendMsg when the user submits.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dictationMsg:
		m.finishDictation(msg)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.disabled {
		return m, nil
	}
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (*Model, tea.Cmd) {
	if m.alert != "" {
		m.alert = ""
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Dictate):
		return m, m.startDictation()
	case m.listening && key.Matches(msg, m.keys.Cancel):
		m.Close()
		return m, nil
	case m.disabled:
		return m, nil
	case key.Matches(msg, m.keys.Send):
		return m, m.submit()
	case key.Matches(msg, m.keys.Newline), key.Matches(msg, m.keys.NewlineAlt):
		m.textarea.InsertString("\n")
		m.updateHeight()
		return m, nil
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	m.updateHeight()
	return m, cmd
}

func (m *Model) submit() tea.Cmd {
	if m.disabled || m.listening {
		return nil
	}
	text := strings.TrimSpace(m.textarea.Value())
	if text == "" {
		return nil
	}
	m.textarea.Reset()
	m.textarea.SetHeight(minHeight)
	return func() tea.Msg { return SendMsg{Text: text} }
}

func (m *Model) startDictation() tea.Cmd {
	if m.disabled || m.listening {
		return nil
	}
	if m.recognizer == nil {
		m.alert = voice.UnavailableMessage
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.listening = true
	m.dictationID++

	id, rec, locale := m.dictationID, m.recognizer, m.locale
	return func() tea.Msg {
		text, err := rec.Recognize(ctx, locale)
		return dictationMsg{id: id, text: text, err: err}
	}
}

func (m *Model) finishDictation(msg dictationMsg) {
	if msg.id != m.dictationID || !m.listening {
		return
	}
	m.listening = false
	m.Close()

	if msg.err != nil {
		m.alert = voice.AlertText(msg.err)
		return
	}
	if msg.text == "" {
		return
	}
	value := m.textarea.Value()
	if value != "" {
		value += " "
	}
	m.textarea.SetValue(value + msg.text)
	m.updateHeight()
}

// updateHeight sizes the text box to its visual line count, between one and
// five rows.
func (m *Model) updateHeight() {
	m.textarea.SetHeight(visualLines(m.textarea.Value(), m.textarea.Width()))
}

func visualLines(content string, width int) int {
	if width <= 0 {
		width = 1
	}
	lines := 0
	for _, line := range strings.Split(content, "\n") {
		w := runewidth.StringWidth(line)
		if w == 0 {
			lines++
		} else {
			lines += (w + width - 1) / width
		}
	}
	return max(minHeight, min(lines, maxHeight))
}

// Counter is the live "n/1000" character count.
func (m *Model) Counter() string {
	return fmt.Sprintf("%d/%d", utf8.RuneCountInString(m.textarea.Value()), CounterLimit)
}

func (m *Model) View() string {
	if m.alert != "" {
		return m.viewAlert()
	}

	box := m.styles.InputBorder.Width(m.width - m.styles.InputBorder.GetHorizontalBorderSize()).Render(m.textarea.View())
	return lipgloss.JoinVertical(lipgloss.Left, box, m.viewFooter())
}

func (m *Model) viewAlert() string {
	width := m.width - m.styles.Alert.GetHorizontalFrameSize()
	if width < 1 {
		width = 1
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Width(width).Render(m.alert),
		m.styles.Muted.Render(DismissHint),
	)
	return m.styles.Alert.Render(body)
}

func (m *Model) viewFooter() string {
	var left string
	switch {
	case m.listening:
		left = m.styles.Highlighted.Render(ui.MicIcon + " " + ListeningHint)
	case m.disabled:
		left = m.styles.Footer.Render(SendingHint)
	default:
		hint := SendHint
		if m.recognizer != nil {
			hint += "  " + VoiceHint
		}
		left = m.styles.Footer.Render(hint)
	}
	right := m.styles.Footer.Render(m.Counter())

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}
