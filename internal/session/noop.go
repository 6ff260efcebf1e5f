package session

import (
	"context"

	"github.com/samsaffron/jarvis/internal/llm"
)

// NoopStore is a no-op implementation of Store used when sessions are disabled.
// It silently discards all writes and returns empty results for reads.
type NoopStore struct{}

func (s *NoopStore) Create(ctx context.Context, sess *Session) error {
	if sess.ID == "" {
		sess.ID = NewID()
	}
	return nil
}

func (s *NoopStore) Get(ctx context.Context, id string) (*Session, error) {
	return nil, nil
}

func (s *NoopStore) AddTurn(ctx context.Context, sessionID string, turn llm.Turn) error {
	return nil
}

func (s *NoopStore) Turns(ctx context.Context, sessionID string) ([]llm.Turn, error) {
	return nil, nil
}

func (s *NoopStore) List(ctx context.Context, opts ListOptions) ([]Summary, error) {
	return nil, nil
}

func (s *NoopStore) Latest(ctx context.Context) (*Session, error) {
	return nil, nil
}

func (s *NoopStore) Close() error {
	return nil
}
