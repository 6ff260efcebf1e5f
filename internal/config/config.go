package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const appName = "jarvis"

type Config struct {
	OpenRouter OpenRouterConfig `mapstructure:"openrouter" yaml:"openrouter"`
	Voice      VoiceConfig      `mapstructure:"voice" yaml:"voice"`
	Session    SessionConfig    `mapstructure:"session" yaml:"session"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
	UI         UIConfig         `mapstructure:"ui" yaml:"ui"`
	Theme      ThemeConfig      `mapstructure:"theme" yaml:"theme,omitempty"`
}

// OpenRouterConfig holds the completion credential and the attribution
// headers OpenRouter uses to identify the calling app.
type OpenRouterConfig struct {
	APIKey   string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	AppURL   string `mapstructure:"app_url" yaml:"app_url"`
	AppTitle string `mapstructure:"app_title" yaml:"app_title"`
}

// VoiceConfig configures dictation: a local recorder captures audio and a
// Whisper-compatible endpoint turns it into text.
type VoiceConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	Recorder   string `mapstructure:"recorder" yaml:"recorder,omitempty"` // arecord, rec, ffmpeg; empty = autodetect
	MaxSeconds int    `mapstructure:"max_seconds" yaml:"max_seconds"`
	Locale     string `mapstructure:"locale" yaml:"locale"`
	APIKey     string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	BaseURL    string `mapstructure:"base_url" yaml:"base_url,omitempty"` // e.g. a local whisper.cpp server
	Model      string `mapstructure:"model" yaml:"model"`
}

type SessionConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path,omitempty"` // override database path
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file,omitempty"` // "-" for stderr
}

type UIConfig struct {
	Markdown bool `mapstructure:"markdown" yaml:"markdown"` // render assistant turns as markdown
}

// ThemeConfig allows customization of UI colors
// Colors can be ANSI color numbers (0-255) or hex codes (#RRGGBB)
type ThemeConfig struct {
	Primary   string `mapstructure:"primary" yaml:"primary,omitempty"`
	Secondary string `mapstructure:"secondary" yaml:"secondary,omitempty"`
	Error     string `mapstructure:"error" yaml:"error,omitempty"`
	Muted     string `mapstructure:"muted" yaml:"muted,omitempty"`
	Text      string `mapstructure:"text" yaml:"text,omitempty"`
	UserMsgBg string `mapstructure:"user_msg_bg" yaml:"user_msg_bg,omitempty"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("openrouter.app_url", "https://github.com/samsaffron/jarvis")
	v.SetDefault("openrouter.app_title", "JARVIS AI Assistant")
	v.SetDefault("voice.enabled", true)
	v.SetDefault("voice.max_seconds", 8)
	v.SetDefault("voice.locale", "en-US")
	v.SetDefault("voice.model", "whisper-1")
	v.SetDefault("session.enabled", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("ui.markdown", false)
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func Load() (*Config, error) {
	configPath, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config dir: %w", err)
	}
	return LoadFrom(configPath, ".")
}

// LoadFrom reads config.yaml from the first directory that has one. A missing
// file is not an error, and neither is a missing API key: the completion
// client reports that when it is first used.
func LoadFrom(dirs ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}
	setDefaults(v)

	// Read config file (optional - won't error if missing)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	resolveOpenRouterCredentials(&cfg.OpenRouter)
	resolveVoiceCredentials(&cfg.Voice)
	cfg.Session.Path = expandEnv(cfg.Session.Path)
	cfg.Log.File = expandEnv(cfg.Log.File)

	return &cfg, nil
}

// resolveOpenRouterCredentials resolves OpenRouter API credentials
func resolveOpenRouterCredentials(cfg *OpenRouterConfig) {
	cfg.APIKey = expandEnv(cfg.APIKey)
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("NEXT_PUBLIC_OPENROUTER_API_KEY")
	}
	cfg.AppURL = expandEnv(cfg.AppURL)
	cfg.AppTitle = expandEnv(cfg.AppTitle)
}

// resolveVoiceCredentials resolves the transcription key.
// A custom base URL (local whisper.cpp) usually needs no key.
func resolveVoiceCredentials(cfg *VoiceConfig) {
	cfg.APIKey = expandEnv(cfg.APIKey)
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	cfg.BaseURL = expandEnv(cfg.BaseURL)
	cfg.Recorder = expandEnv(cfg.Recorder)
}

// expandEnv expands ${VAR} or $VAR in a string
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		varName := s[2 : len(s)-1]
		return os.Getenv(varName)
	}
	if strings.HasPrefix(s, "$") {
		return os.Getenv(s[1:])
	}
	return s
}

// GetConfigDir returns the XDG config directory for jarvis.
// Uses $XDG_CONFIG_HOME if set, otherwise ~/.config
func GetConfigDir() (string, error) {
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		return filepath.Join(xdgHome, appName), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", appName), nil
}

// GetConfigPath returns the path where the config file should be located
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// GetDataDir returns the XDG data directory for jarvis.
// Uses $XDG_DATA_HOME if set, otherwise ~/.local/share
func GetDataDir() (string, error) {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, appName), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", appName), nil
}

// Exists returns true if a config file exists
func Exists() bool {
	path, err := GetConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Save writes the config to disk
func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo writes cfg as YAML to path. The file holds a credential, so it is
// created user-readable only.
func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	header := []byte("# jarvis configuration\n# api_key may reference an environment variable, e.g. $OPENROUTER_API_KEY\n\n")
	return os.WriteFile(path, append(header, data...), 0600)
}

// Masked returns a copy of cfg with credentials obscured, for display.
func (c *Config) Masked() *Config {
	out := *c
	out.OpenRouter.APIKey = maskSecret(c.OpenRouter.APIKey)
	out.Voice.APIKey = maskSecret(c.Voice.APIKey)
	return &out
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}
