// Package chat is the JARVIS terminal UI: it owns the conversation and
// wires the transcript, the input control and the completion client.
package chat

import (
	"context"
	"os"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/samsaffron/jarvis/internal/llm"
	"github.com/samsaffron/jarvis/internal/logging"
	"github.com/samsaffron/jarvis/internal/session"
	"github.com/samsaffron/jarvis/internal/tui/input"
	"github.com/samsaffron/jarvis/internal/tui/transcript"
	"github.com/samsaffron/jarvis/internal/ui"
	"github.com/samsaffron/jarvis/internal/voice"
)

// completionMsg carries the result of one completion request.
type completionMsg struct {
	id      int
	content string
	err     error
}

// Options configures a chat Model.
type Options struct {
	Completer  llm.Completer
	Store      session.Store    // nil disables persistence
	Recognizer voice.Recognizer // nil disables dictation
	Locale     string
	Markdown   bool
	Logger     *zap.Logger

	// Session and Turns resume a stored conversation.
	Session *session.Session
	Turns   []llm.Turn
}

// Model is the bubbletea model for the chat screen.
type Model struct {
	completer llm.Completer
	store     session.Store
	sess      *session.Session
	logger    *zap.Logger
	styles    *ui.Styles
	keyMap    KeyMap

	transcript *transcript.Model
	input      *input.Model

	// Conversation state. turns is append-only until the conversation is
	// cleared; pending is true while exactly one request is outstanding.
	turns   []llm.Turn
	pending bool
	errMsg  string

	requestID     int
	requestCancel context.CancelFunc

	width    int
	height   int
	quitting bool

	now func() time.Time
}

// New creates the chat model sized to the current terminal.
func New(opts Options) *Model {
	width := 80
	height := 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}

	store := opts.Store
	if store == nil {
		store = &session.NoopStore{}
	}

	styles := ui.DefaultStyles()
	m := &Model{
		completer:  opts.Completer,
		store:      store,
		sess:       opts.Session,
		logger:     logging.OrNop(opts.Logger),
		styles:     styles,
		keyMap:     DefaultKeyMap(),
		transcript: transcript.New(styles, width, height, opts.Markdown),
		input:      input.New(styles, opts.Recognizer, opts.Locale, width),
		turns:      slices.Clone(opts.Turns),
		width:      width,
		height:     height,
		now:        time.Now,
	}
	m.transcript.SetTurns(m.turns)
	m.layout()
	return m
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.SetWidth(m.width)
		m.layout()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keyMap.Quit):
			return m, m.quit()
		case key.Matches(msg, m.keyMap.NewSession):
			m.clear()
			return m, nil
		case key.Matches(msg, m.keyMap.PageUp), key.Matches(msg, m.keyMap.PageDown):
			m.transcript, cmd = m.transcript.Update(msg)
			return m, cmd
		}
		m.input, cmd = m.input.Update(msg)
		m.layout()
		return m, cmd

	case tea.MouseMsg:
		m.transcript, cmd = m.transcript.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		m.transcript, cmd = m.transcript.Update(msg)
		return m, cmd

	case input.SendMsg:
		return m, m.send(msg.Text)

	case completionMsg:
		return m, m.receive(msg)
	}

	// Dictation results and cursor blinks.
	m.input, cmd = m.input.Update(msg)
	m.layout()
	return m, cmd
}

// send appends the user turn and dispatches the completion request.
func (m *Model) send(text string) tea.Cmd {
	if m.pending {
		return nil
	}

	turn := llm.UserTurn(text, m.now())
	m.turns = append(m.turns, turn)
	m.persist(turn)

	m.errMsg = ""
	m.pending = true
	m.input.SetDisabled(true)
	m.transcript.SetTurns(m.turns)
	spin := m.transcript.SetPending(true)
	m.layout()

	return tea.Batch(spin, m.complete(slices.Clone(m.turns)))
}

func (m *Model) complete(history []llm.Turn) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.requestCancel = cancel
	m.requestID++
	id := m.requestID
	completer := m.completer

	return func() tea.Msg {
		content, err := completer.Complete(ctx, history)
		return completionMsg{id: id, content: content, err: err}
	}
}

// receive applies a completion result. Results for a request that was
// abandoned by clearing the conversation are dropped.
func (m *Model) receive(msg completionMsg) tea.Cmd {
	if msg.id != m.requestID || !m.pending {
		return nil
	}
	m.cancelRequest()

	if msg.err != nil {
		m.logger.Warn("completion failed", zap.Error(msg.err))
		m.errMsg = llm.UserMessage(msg.err)
	} else {
		turn := llm.AssistantTurn(msg.content, m.now())
		m.turns = append(m.turns, turn)
		m.persist(turn)
		m.transcript.SetTurns(m.turns)
	}

	m.pending = false
	m.input.SetDisabled(false)
	m.transcript.SetPending(false)
	m.layout()
	return nil
}

// persist stores a turn, creating the session on the first one. Storage
// failures never interrupt the chat; the store wrapper installed by the CLI
// reports them.
func (m *Model) persist(turn llm.Turn) {
	ctx := context.Background()
	if m.sess == nil {
		sess := &session.Session{CreatedAt: m.now()}
		if err := m.store.Create(ctx, sess); err != nil {
			m.logger.Debug("create session failed", zap.Error(err))
			return
		}
		m.sess = sess
		m.logger.Debug("session created", zap.String("session", sess.ID))
	}
	if err := m.store.AddTurn(ctx, m.sess.ID, turn); err != nil {
		m.logger.Debug("store turn failed", zap.String("session", m.sess.ID), zap.Error(err))
	}
}

// clear empties the conversation and starts a new session. Stored turns are
// kept.
func (m *Model) clear() {
	m.cancelRequest()
	m.requestID++
	m.turns = nil
	m.sess = nil
	m.errMsg = ""
	m.pending = false
	m.input.SetDisabled(false)
	m.transcript.SetTurns(nil)
	m.transcript.SetPending(false)
	m.layout()
}

func (m *Model) cancelRequest() {
	if m.requestCancel != nil {
		m.requestCancel()
		m.requestCancel = nil
	}
}

func (m *Model) quit() tea.Cmd {
	m.quitting = true
	m.cancelRequest()
	m.input.Close()
	return tea.Quit
}

// Turns returns a copy of the conversation.
func (m *Model) Turns() []llm.Turn {
	return slices.Clone(m.turns)
}

// Pending reports whether a reply is outstanding.
func (m *Model) Pending() bool {
	return m.pending
}

// Session returns the stored session backing the conversation, if any.
func (m *Model) Session() *session.Session {
	return m.sess
}
