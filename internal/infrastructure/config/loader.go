package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/bnrubin/discord-logbot/internal/domain"
	"github.com/bnrubin/discord-logbot/internal/pkg/filesystem"
	"github.com/bnrubin/discord-logbot/internal/ports"
)

// Environment variables read by the loader.
const (
	EnvConfigPath = "LOGBOT_CONFIG"
	EnvToken      = "DISCORD_TOKEN"
	EnvDBPath     = "LOGBOT_DB_PATH"
	EnvImagePath  = "LOGBOT_IMAGE_PATH"
	EnvListenAddr = "LOGBOT_LISTEN_ADDR"
)

const (
	defaultConfigFile = "logbot.yaml"
	// DefaultEnvFile holds secrets; it is optional.
	DefaultEnvFile = ".env"
)

// FileLoader loads YAML configuration from ./logbot.yaml (overridable via LOGBOT_CONFIG)
// and secrets from a .env file plus the process environment.
type FileLoader struct {
	overridePath string
	envFile      string
}

// NewFileLoader builds a new loader. Empty arguments select the defaults.
func NewFileLoader(path, envFile string) *FileLoader {
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	return &FileLoader{overridePath: path, envFile: envFile}
}

// Load implements ports.ConfigProvider.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	// Existing environment variables win over .env entries.
	if err := godotenv.Load(l.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return domain.Config{}, fmt.Errorf("load %s: %w", l.envFile, err)
	}

	path := l.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := writeDefault(path, cfg); err != nil {
				return domain.Config{}, err
			}
			return applyEnv(cfg), nil
		}
		return domain.Config{}, err
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	return applyEnv(hydrateDefaults(cfg)), nil
}

// Path returns the config file the loader reads.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return filesystem.ExpandPath(l.overridePath)
	}
	if custom := os.Getenv(EnvConfigPath); custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return defaultConfigFile
}

func writeDefault(path string, cfg domain.Config) error {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return err
	}
	cfg.Discord.Token = ""
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, domain.SecureFilePermissions)
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() domain.Config {
	return domain.Config{
		ConfigFormatVersion: "1",
		Discord: domain.DiscordSettings{
			MessageCacheSize: domain.DefaultMessageCacheSize,
		},
		Lifecycle: domain.LifecycleSettings{
			CompletionTitle:  domain.DefaultCompletionTitle,
			PlaceholderWidth: domain.DefaultPlaceholderWidth,
		},
		Store: domain.StoreSettings{
			Path: filepath.Join("data", "logbot.db"),
		},
		Images: domain.ImageSettings{
			Path:    filepath.Join("data", "images"),
			Timeout: domain.DefaultImageTimeout.String(),
			MaxSize: domain.DefaultImageMaxSize,
		},
		Web: domain.WebSettings{
			ListenAddr:     domain.DefaultListenAddr,
			PageSize:       domain.DefaultPageSize,
			ScopeChannel:   domain.DefaultScopeChannel,
			RateLimitRPS:   domain.DefaultRateLimitRPS,
			RateLimitBurst: domain.DefaultRateLimitBurst,
		},
		Logging: domain.LoggingSettings{
			Level: "info",
		},
	}
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	def := DefaultConfig()
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = def.ConfigFormatVersion
	}
	if cfg.Discord.MessageCacheSize == 0 {
		cfg.Discord.MessageCacheSize = def.Discord.MessageCacheSize
	}
	if cfg.Lifecycle.CompletionTitle == "" {
		cfg.Lifecycle.CompletionTitle = def.Lifecycle.CompletionTitle
	}
	if cfg.Lifecycle.PlaceholderWidth == 0 {
		cfg.Lifecycle.PlaceholderWidth = def.Lifecycle.PlaceholderWidth
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = def.Store.Path
	}
	if cfg.Images.Path == "" {
		cfg.Images.Path = def.Images.Path
	}
	if cfg.Images.Timeout == "" {
		cfg.Images.Timeout = def.Images.Timeout
	}
	if cfg.Images.MaxSize == "" {
		cfg.Images.MaxSize = def.Images.MaxSize
	}
	if cfg.Web.ListenAddr == "" {
		cfg.Web.ListenAddr = def.Web.ListenAddr
	}
	if cfg.Web.PageSize == 0 {
		cfg.Web.PageSize = def.Web.PageSize
	}
	if cfg.Web.ScopeChannel == "" {
		cfg.Web.ScopeChannel = def.Web.ScopeChannel
	}
	if cfg.Web.RateLimitRPS == 0 {
		cfg.Web.RateLimitRPS = def.Web.RateLimitRPS
	}
	if cfg.Web.RateLimitBurst == 0 {
		cfg.Web.RateLimitBurst = def.Web.RateLimitBurst
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	cfg.Store.Path = filesystem.ExpandPath(cfg.Store.Path)
	cfg.Images.Path = filesystem.ExpandPath(cfg.Images.Path)
	return cfg
}

func applyEnv(cfg domain.Config) domain.Config {
	if token := os.Getenv(EnvToken); token != "" {
		cfg.Discord.Token = token
	}
	if path := os.Getenv(EnvDBPath); path != "" {
		cfg.Store.Path = filesystem.ExpandPath(path)
	}
	if path := os.Getenv(EnvImagePath); path != "" {
		cfg.Images.Path = filesystem.ExpandPath(path)
	}
	if addr := os.Getenv(EnvListenAddr); addr != "" {
		cfg.Web.ListenAddr = addr
	}
	return cfg
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
