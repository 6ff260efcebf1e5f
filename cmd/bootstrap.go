package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/samsaffron/jarvis/internal/config"
	"github.com/samsaffron/jarvis/internal/logging"
	"github.com/samsaffron/jarvis/internal/session"
	"github.com/samsaffron/jarvis/internal/ui"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}
	return cfg, nil
}

// bootstrap loads the configuration, applies the theme and builds the logger
// every command shares.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	ui.InitTheme(cfg.Theme)
	ui.ResetMarkdownCache()

	logger, err := logging.New(cfg.Log, debugMode)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func openStore(cfg *config.Config, logger *zap.Logger) (session.Store, error) {
	store, err := session.NewStore(cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	return session.NewLoggingStore(store, logger), nil
}
