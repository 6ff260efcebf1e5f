package transcript

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/samsaffron/jarvis/internal/llm"
	"github.com/samsaffron/jarvis/internal/ui"
)

func newTestModel(width, height int) *Model {
	return New(ui.DefaultStyles(), width, height, false)
}

func TestLayoutEmptyShowsGreeting(t *testing.T) {
	got := Layout(nil, false)
	want := []Block{{Kind: BlockGreeting}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Layout mismatch (-want +got):\n%s", diff)
	}
}

func TestLayoutPendingWithoutTurns(t *testing.T) {
	got := Layout(nil, true)
	want := []Block{{Kind: BlockThinking}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Layout mismatch (-want +got):\n%s", diff)
	}
}

func TestLayoutAlignsByRole(t *testing.T) {
	turns := []llm.Turn{
		{Role: llm.RoleUser, Content: "Hi"},
		{Role: llm.RoleAssistant, Content: "Hello, Sir."},
		{Role: llm.RoleSystem, Content: "note"},
	}
	got := Layout(turns, true)
	want := []Block{
		{Kind: BlockTurn, Turn: turns[0], AlignRight: true},
		{Kind: BlockTurn, Turn: turns[1]},
		{Kind: BlockTurn, Turn: turns[2]},
		{Kind: BlockThinking},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Layout mismatch (-want +got):\n%s", diff)
	}
}

func TestViewGreeting(t *testing.T) {
	m := newTestModel(100, 20)
	view := m.View()
	for _, want := range []string{GreetingTitle, "How may I assist you today?"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected greeting view to contain %q, got:\n%s", want, view)
		}
	}
}

func TestViewTurnsAndThinking(t *testing.T) {
	m := newTestModel(100, 30)
	at := time.Date(2026, 3, 4, 9, 7, 0, 0, time.Local)
	m.SetTurns([]llm.Turn{
		llm.UserTurn("Hi", at),
		llm.AssistantTurn("Good day, Sir.", time.Time{}),
	})

	view := m.View()
	if strings.Contains(view, GreetingTitle) {
		t.Error("greeting should disappear once turns exist")
	}
	for _, want := range []string{"Hi", "Good day, Sir.", "09:07"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q, got:\n%s", want, view)
		}
	}
	if strings.Contains(view, ThinkingText) {
		t.Error("thinking indicator shown while idle")
	}

	if cmd := m.SetPending(true); cmd == nil {
		t.Error("expected spinner tick when pending starts")
	}
	if !strings.Contains(m.View(), ThinkingText) {
		t.Errorf("expected thinking indicator, got:\n%s", m.View())
	}

	m.SetPending(false)
	if strings.Contains(m.View(), ThinkingText) {
		t.Error("thinking indicator should be removed when pending clears")
	}
}

func TestUserTurnAlignedRight(t *testing.T) {
	m := newTestModel(60, 10)
	m.SetTurns([]llm.Turn{{Role: llm.RoleUser, Content: "ping"}})

	for _, line := range strings.Split(m.View(), "\n") {
		if idx := strings.Index(line, "ping"); idx >= 0 {
			if idx < 30 {
				t.Fatalf("expected right-aligned user bubble, got %q", line)
			}
			return
		}
	}
	t.Fatalf("user content not rendered:\n%s", m.View())
}

func TestAutoScrollOnEveryChange(t *testing.T) {
	m := newTestModel(60, 5)
	var turns []llm.Turn
	for i := 0; i < 20; i++ {
		turns = append(turns, llm.AssistantTurn(fmt.Sprintf("line %d", i), time.Time{}))
	}
	m.SetTurns(turns)
	if !m.AtBottom() {
		t.Fatal("expected view scrolled to bottom after SetTurns")
	}
	if !strings.Contains(m.View(), "line 19") {
		t.Errorf("expected newest turn visible, got:\n%s", m.View())
	}

	m.viewport.GotoTop()
	m.SetPending(true)
	if !m.AtBottom() {
		t.Fatal("expected view scrolled to bottom after pending toggled")
	}
	if !strings.Contains(m.View(), ThinkingText) {
		t.Errorf("expected thinking indicator visible, got:\n%s", m.View())
	}

	m.viewport.GotoTop()
	m.SetSize(50, 6)
	if !m.AtBottom() {
		t.Fatal("expected view scrolled to bottom after resize")
	}
}

func TestSetTurnsDoesNotModifyInput(t *testing.T) {
	turns := []llm.Turn{llm.UserTurn("  spaced  ", time.Time{})}
	before := append([]llm.Turn(nil), turns...)

	m := newTestModel(80, 10)
	m.SetTurns(turns)
	m.SetPending(true)

	if diff := cmp.Diff(before, turns); diff != "" {
		t.Fatalf("turns modified (-before +after):\n%s", diff)
	}
}

func TestWrapPreservesLineBreaks(t *testing.T) {
	got := Wrap("first line\nsecond line", 40)
	if got != "first line\nsecond line" {
		t.Fatalf("Wrap = %q", got)
	}

	got = Wrap("supercalifragilistic", 5)
	for _, line := range strings.Split(got, "\n") {
		if len([]rune(line)) > 5 {
			t.Fatalf("line %q exceeds width in %q", line, got)
		}
	}
}
