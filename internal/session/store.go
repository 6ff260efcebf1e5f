package session

import (
	"context"
	"path/filepath"

	"github.com/samsaffron/jarvis/internal/config"
	"github.com/samsaffron/jarvis/internal/llm"
)

// Store is the interface for session persistence.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)

	// AddTurn appends a turn. The first user turn also titles the session.
	AddTurn(ctx context.Context, sessionID string, turn llm.Turn) error
	// Turns returns a session's turns in insertion order.
	Turns(ctx context.Context, sessionID string) ([]llm.Turn, error)

	List(ctx context.Context, opts ListOptions) ([]Summary, error)
	// Latest returns the most recently updated session, or nil if none.
	Latest(ctx context.Context) (*Session, error)

	Close() error
}

// GetDBPath returns the path to the sessions database: the configured path,
// or sessions.db under the XDG data directory.
func GetDBPath(cfg config.SessionConfig) (string, error) {
	if cfg.Path != "" {
		return cfg.Path, nil
	}
	dataDir, err := config.GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "sessions.db"), nil
}

// NewStore creates a new Store based on the configuration.
// If sessions are disabled, returns a no-op store.
func NewStore(cfg config.SessionConfig) (Store, error) {
	if !cfg.Enabled {
		return &NoopStore{}, nil
	}
	return NewSQLiteStore(cfg)
}
