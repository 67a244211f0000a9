package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bnrubin/discord-logbot/internal/domain"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if err := validateDiscord(cfg.Discord); err != nil {
		return err
	}
	if err := validateLifecycle(cfg.Lifecycle); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Store.Path) == "" {
		return errors.New("store.path must be set")
	}
	if err := validateImages(cfg); err != nil {
		return err
	}
	if err := validateWeb(cfg.Web); err != nil {
		return err
	}
	return validateLogging(cfg.Logging)
}

// ValidateForBot additionally requires the gateway token.
func ValidateForBot(cfg domain.Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	if !cfg.HasDiscordToken() {
		return errors.New("discord token missing: set DISCORD_TOKEN in the environment or .env")
	}
	return nil
}

func validateDiscord(discord domain.DiscordSettings) error {
	if discord.ObservedBotID != "" {
		if _, err := domain.ParseMessageID(discord.ObservedBotID); err != nil {
			return fmt.Errorf("discord.observed_bot_id invalid: %w", err)
		}
	}
	if discord.MessageCacheSize < 0 {
		return fmt.Errorf("discord.message_cache_size must be >= 0")
	}
	return nil
}

func validateLifecycle(lc domain.LifecycleSettings) error {
	if strings.TrimSpace(lc.CompletionTitle) == "" {
		return fmt.Errorf("lifecycle.completion_title must be set")
	}
	if lc.PlaceholderWidth <= 0 {
		return fmt.Errorf("lifecycle.placeholder_width must be > 0")
	}
	return nil
}

func validateImages(cfg domain.Config) error {
	if strings.TrimSpace(cfg.Images.Path) == "" {
		return fmt.Errorf("images.path must be set")
	}
	if _, err := cfg.ImageTimeout(); err != nil {
		return err
	}
	if _, err := cfg.MaxImageBytes(); err != nil {
		return err
	}
	return nil
}

func validateWeb(web domain.WebSettings) error {
	if web.ListenAddr == "" {
		return fmt.Errorf("web.listen_addr must be set")
	}
	if web.PageSize <= 0 {
		return fmt.Errorf("web.page_size must be > 0")
	}
	if web.RateLimitRPS < 0 {
		return fmt.Errorf("web.rate_limit_rps must be >= 0")
	}
	if web.RateLimitRPS > 0 && web.RateLimitBurst < 1 {
		return fmt.Errorf("web.rate_limit_burst must be >= 1 when rate limiting is enabled")
	}
	return nil
}

func validateLogging(logging domain.LoggingSettings) error {
	switch strings.ToLower(logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug|info|warn|error, got %s", logging.Level)
	}
}
