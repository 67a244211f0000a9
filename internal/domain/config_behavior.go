package domain

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Rules converts the lifecycle section into classifier rules.
func (c *Config) Rules() LifecycleRules {
	return LifecycleRules{
		ObservedBotID:    c.Discord.ObservedBotID,
		CompletionTitle:  c.Lifecycle.CompletionTitle,
		PlaceholderWidth: c.Lifecycle.PlaceholderWidth,
	}
}

// ImageTimeout parses images.timeout, falling back to DefaultImageTimeout when unset.
func (c *Config) ImageTimeout() (time.Duration, error) {
	if c.Images.Timeout == "" {
		return DefaultImageTimeout, nil
	}
	d, err := time.ParseDuration(c.Images.Timeout)
	if err != nil {
		return 0, fmt.Errorf("images.timeout invalid: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("images.timeout must be > 0")
	}
	return d, nil
}

// MaxImageBytes parses images.max_size ("25MB", "1GiB"). Zero means unlimited.
func (c *Config) MaxImageBytes() (int64, error) {
	if c.Images.MaxSize == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(c.Images.MaxSize)
	if err != nil {
		return 0, fmt.Errorf("images.max_size invalid: %w", err)
	}
	return int64(n), nil
}

// HasDiscordToken reports whether a gateway token is available.
func (c *Config) HasDiscordToken() bool {
	return c.Discord.Token != ""
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.Discord.Token != "" {
		c.Discord.Token = "********"
	}
	return c
}
