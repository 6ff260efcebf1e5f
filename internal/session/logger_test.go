package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/samsaffron/jarvis/internal/llm"
)

type failingCreateStore struct {
	NoopStore
}

func (s *failingCreateStore) Create(ctx context.Context, sess *Session) error {
	return errors.New("read-only database")
}

func (s *failingCreateStore) AddTurn(ctx context.Context, sessionID string, turn llm.Turn) error {
	return errors.New("read-only database")
}

func TestLoggingStoreWarnsOncePerOperation(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	store := NewLoggingStore(&failingCreateStore{}, zap.New(core))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := store.Create(ctx, &Session{}); err == nil {
			t.Fatal("expected Create error to be returned")
		}
		if err := store.AddTurn(ctx, "s", llm.UserTurn("hi", time.Now())); err == nil {
			t.Fatal("expected AddTurn error to be returned")
		}
	}

	if got := logs.FilterLevelExact(zap.WarnLevel).Len(); got != 2 {
		t.Errorf("expected one warning per operation, got %d", got)
	}
	if got := logs.FilterLevelExact(zap.DebugLevel).Len(); got != 4 {
		t.Errorf("expected repeats at debug level, got %d", got)
	}
}

func TestLoggingStoreNilLogger(t *testing.T) {
	store := NewLoggingStore(&failingCreateStore{}, nil)
	if err := store.Create(context.Background(), &Session{}); err == nil {
		t.Fatal("expected Create error to be returned")
	}
}
