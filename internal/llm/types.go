package llm

import "time"

// Role identifies a message role.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in the conversation. Turns are values and are never
// modified after they are appended to a transcript.
type Turn struct {
	Role      Role
	Content   string
	Timestamp time.Time // zero when the turn carries no time
}

// HasTimestamp reports whether the turn carries a time of day to display.
func (t Turn) HasTimestamp() bool {
	return !t.Timestamp.IsZero()
}

func UserTurn(content string, at time.Time) Turn {
	return Turn{Role: RoleUser, Content: content, Timestamp: at}
}

func AssistantTurn(content string, at time.Time) Turn {
	return Turn{Role: RoleAssistant, Content: content, Timestamp: at}
}

func SystemTurn(content string) Turn {
	return Turn{Role: RoleSystem, Content: content}
}

// ModelInfo represents a model available from the completion endpoint.
type ModelInfo struct {
	ID      string
	Created int64
	OwnedBy string
}
