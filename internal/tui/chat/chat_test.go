package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/samsaffron/jarvis/internal/llm"
	"github.com/samsaffron/jarvis/internal/session"
	"github.com/samsaffron/jarvis/internal/tui/input"
)

type stubCompleter struct {
	mu      sync.Mutex
	content string
	err     error
	calls   [][]llm.Turn
}

func (s *stubCompleter) Complete(ctx context.Context, history []llm.Turn) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, history)
	return s.content, s.err
}

// memStore records writes in memory.
type memStore struct {
	session.NoopStore
	created []*session.Session
	turns   map[string][]llm.Turn
}

func newMemStore() *memStore {
	return &memStore{turns: map[string][]llm.Turn{}}
}

func (s *memStore) Create(ctx context.Context, sess *session.Session) error {
	if sess.ID == "" {
		sess.ID = session.NewID()
	}
	s.created = append(s.created, sess)
	return nil
}

func (s *memStore) AddTurn(ctx context.Context, sessionID string, turn llm.Turn) error {
	s.turns[sessionID] = append(s.turns[sessionID], turn)
	return nil
}

var fixedNow = time.Date(2026, 5, 1, 10, 30, 0, 0, time.UTC)

func newTestChat(c llm.Completer, store session.Store) *Model {
	m := New(Options{Completer: c, Store: store})
	m.now = func() time.Time { return fixedNow }
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

// runCmd executes cmd and any batched commands, returning the messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, runCmd(c)...)
		}
		return msgs
	}
	return []tea.Msg{msg}
}

func findCompletion(t *testing.T, cmd tea.Cmd) completionMsg {
	t.Helper()
	for _, msg := range runCmd(cmd) {
		if c, ok := msg.(completionMsg); ok {
			return c
		}
	}
	t.Fatal("no completion request dispatched")
	return completionMsg{}
}

func TestSendAndReceive(t *testing.T) {
	c := &stubCompleter{content: "Good day, Sir."}
	m := newTestChat(c, nil)

	_, cmd := m.Update(input.SendMsg{Text: "Hi"})

	if !m.Pending() {
		t.Fatal("expected pending after send")
	}
	if !m.input.Disabled() {
		t.Fatal("expected input disabled while pending")
	}
	if !strings.Contains(m.View(), "JARVIS is thinking...") {
		t.Errorf("expected thinking indicator, got:\n%s", m.View())
	}

	result := findCompletion(t, cmd)
	want := []llm.Turn{llm.UserTurn("Hi", fixedNow)}
	if diff := cmp.Diff(want, c.calls[0]); diff != "" {
		t.Fatalf("completer history mismatch (-want +got):\n%s", diff)
	}

	m.Update(result)

	if m.Pending() {
		t.Error("expected pending cleared")
	}
	if m.input.Disabled() {
		t.Error("expected input re-enabled")
	}
	want = append(want, llm.AssistantTurn("Good day, Sir.", fixedNow))
	if diff := cmp.Diff(want, m.Turns()); diff != "" {
		t.Fatalf("turns mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(m.View(), "Good day, Sir.") {
		t.Errorf("expected reply rendered, got:\n%s", m.View())
	}
}

func TestCompletionFailureShowsError(t *testing.T) {
	c := &stubCompleter{err: &llm.CompletionError{
		Kind:       llm.ErrRateLimit,
		StatusCode: 429,
		Message:    "Rate limit exceeded. Please try again in a moment.",
	}}
	m := newTestChat(c, nil)

	_, cmd := m.Update(input.SendMsg{Text: "Hi"})
	m.Update(findCompletion(t, cmd))

	if m.Pending() || m.input.Disabled() {
		t.Fatal("expected idle after failure")
	}
	if got := m.Turns(); len(got) != 1 || got[0].Role != llm.RoleUser {
		t.Fatalf("expected only the user turn, got %+v", got)
	}
	if !strings.Contains(m.View(), "Rate limit exceeded.") {
		t.Errorf("expected error line, got:\n%s", m.View())
	}

	// The error clears on the next send.
	c.err = nil
	c.content = "Better now."
	m.Update(input.SendMsg{Text: "Again"})
	if strings.Contains(m.View(), "Rate limit exceeded.") {
		t.Error("expected error line cleared on next send")
	}
}

func TestSendIgnoredWhilePending(t *testing.T) {
	c := &stubCompleter{content: "ok"}
	m := newTestChat(c, nil)

	m.Update(input.SendMsg{Text: "first"})
	_, cmd := m.Update(input.SendMsg{Text: "second"})
	if cmd != nil {
		t.Fatal("expected no second request while pending")
	}
	if len(m.Turns()) != 1 {
		t.Fatalf("expected one turn, got %d", len(m.Turns()))
	}
}

func TestClearDropsPendingReply(t *testing.T) {
	c := &stubCompleter{content: "late reply"}
	store := newMemStore()
	m := newTestChat(c, store)

	_, cmd := m.Update(input.SendMsg{Text: "Hi"})
	result := findCompletion(t, cmd)
	first := m.Session()

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlK})

	if m.Pending() || m.input.Disabled() {
		t.Fatal("expected idle after clear")
	}
	if len(m.Turns()) != 0 {
		t.Fatalf("expected empty conversation, got %+v", m.Turns())
	}
	if m.Session() != nil {
		t.Fatal("expected a new session to start on the next turn")
	}
	if !strings.Contains(m.View(), "JARVIS is ready") {
		t.Errorf("expected greeting after clear, got:\n%s", m.View())
	}

	m.Update(result)
	if len(m.Turns()) != 0 {
		t.Fatalf("stale reply applied after clear: %+v", m.Turns())
	}

	// Stored turns of the old session are kept.
	if got := len(store.turns[first.ID]); got != 1 {
		t.Errorf("expected old session to keep 1 turn, got %d", got)
	}
}

func TestTurnsPersisted(t *testing.T) {
	c := &stubCompleter{content: "Good day, Sir."}
	store := newMemStore()
	m := newTestChat(c, store)

	_, cmd := m.Update(input.SendMsg{Text: "Hi"})
	m.Update(findCompletion(t, cmd))

	if len(store.created) != 1 {
		t.Fatalf("expected one session created, got %d", len(store.created))
	}
	want := []llm.Turn{
		llm.UserTurn("Hi", fixedNow),
		llm.AssistantTurn("Good day, Sir.", fixedNow),
	}
	if diff := cmp.Diff(want, store.turns[store.created[0].ID]); diff != "" {
		t.Fatalf("stored turns mismatch (-want +got):\n%s", diff)
	}
}

func TestResumeShowsStoredTurns(t *testing.T) {
	turns := []llm.Turn{
		llm.UserTurn("Earlier question", fixedNow),
		llm.AssistantTurn("Earlier answer", fixedNow),
	}
	sess := &session.Session{ID: "resumed"}
	store := newMemStore()

	m := New(Options{Completer: &stubCompleter{content: "next"}, Store: store, Session: sess, Turns: turns})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	if diff := cmp.Diff(turns, m.Turns()); diff != "" {
		t.Fatalf("resumed turns mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(m.View(), "Earlier answer") {
		t.Errorf("expected resumed turns rendered, got:\n%s", m.View())
	}

	_, cmd := m.Update(input.SendMsg{Text: "Continue"})
	m.Update(findCompletion(t, cmd))
	if len(store.created) != 0 {
		t.Error("resumed conversation must not create a new session")
	}
	if got := len(store.turns["resumed"]); got != 2 {
		t.Errorf("expected 2 new turns on resumed session, got %d", got)
	}
}

func TestQuit(t *testing.T) {
	m := newTestChat(&stubCompleter{}, nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
	if m.View() != "" {
		t.Error("expected empty view after quit")
	}
}

func TestTypingAndEnterSends(t *testing.T) {
	m := newTestChat(&stubCompleter{content: "ok"}, nil)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Hello JARVIS")})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	var sent *input.SendMsg
	for _, msg := range runCmd(cmd) {
		if s, ok := msg.(input.SendMsg); ok {
			sent = &s
		}
	}
	if sent == nil || sent.Text != "Hello JARVIS" {
		t.Fatalf("expected SendMsg from input, got %+v", sent)
	}
}

// brokenStore creates sessions but fails every turn write.
type brokenStore struct {
	session.NoopStore
}

func (s *brokenStore) AddTurn(ctx context.Context, sessionID string, turn llm.Turn) error {
	return errors.New("disk full")
}

func TestStoreFailureWarnsOnce(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	store := session.NewLoggingStore(&brokenStore{}, logger)

	m := New(Options{Completer: &stubCompleter{content: "ok"}, Store: store, Logger: logger})
	m.now = func() time.Time { return fixedNow }
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	for _, text := range []string{"first", "second"} {
		_, cmd := m.Update(input.SendMsg{Text: text})
		m.Update(findCompletion(t, cmd))
	}

	if got := len(m.Turns()); got != 4 {
		t.Fatalf("expected the chat to keep all 4 turns, got %d", got)
	}
	if got := logs.FilterLevelExact(zap.WarnLevel).Len(); got != 1 {
		t.Errorf("expected one warning for repeated store failures, got %d: %+v", got, logs.All())
	}
}
