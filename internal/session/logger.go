package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/samsaffron/jarvis/internal/llm"
	"github.com/samsaffron/jarvis/internal/logging"
)

// LoggingStore wraps a Store and logs write errors. Persistence is best
// effort: the chat keeps working when the database does not.
type LoggingStore struct {
	Store
	logger *zap.Logger
	mu     sync.Mutex
	warned map[string]bool // Rate-limit warnings by operation type
}

// NewLoggingStore creates a new LoggingStore wrapper.
func NewLoggingStore(store Store, logger *zap.Logger) *LoggingStore {
	return &LoggingStore{
		Store:  store,
		logger: logging.OrNop(logger),
		warned: make(map[string]bool),
	}
}

// logOnce logs a warning only once per operation type to avoid spamming.
func (s *LoggingStore) logOnce(op string, err error) {
	if err == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.warned[op] {
		s.logger.Debug("session write failed", zap.String("op", op), zap.Error(err))
		return
	}
	s.warned[op] = true
	s.logger.Warn("session write failed", zap.String("op", op), zap.Error(err))
}

// Create wraps Store.Create with error logging.
func (s *LoggingStore) Create(ctx context.Context, sess *Session) error {
	err := s.Store.Create(ctx, sess)
	s.logOnce("Create", err)
	return err
}

// AddTurn wraps Store.AddTurn with error logging.
func (s *LoggingStore) AddTurn(ctx context.Context, sessionID string, turn llm.Turn) error {
	err := s.Store.AddTurn(ctx, sessionID, turn)
	s.logOnce("AddTurn", err)
	return err
}
