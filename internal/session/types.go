package session

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// maxTitleRunes bounds the title taken from the first user turn.
const maxTitleRunes = 60

// Session is one stored conversation. Its turns are append-only.
type Session struct {
	ID        string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary is a session as shown by `jarvis history`.
type Summary struct {
	ID        string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
	TurnCount int
}

// ListOptions controls List.
type ListOptions struct {
	Limit int // 0 = no limit
}

// NewID returns a new session ID.
func NewID() string {
	return uuid.NewString()
}

// TitleFrom derives a one-line title from message content.
func TitleFrom(content string) string {
	title := strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(title) <= maxTitleRunes {
		return title
	}
	runes := []rune(title)
	return strings.TrimSpace(string(runes[:maxTitleRunes-3])) + "..."
}
