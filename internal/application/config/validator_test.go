package config

import (
	"strings"
	"testing"

	"github.com/bnrubin/discord-logbot/internal/domain"
)

func validConfig() domain.Config {
	return domain.Config{
		ConfigFormatVersion: "1",
		Discord:             domain.DiscordSettings{ObservedBotID: "1000000000000000001", MessageCacheSize: 500},
		Lifecycle:           domain.LifecycleSettings{CompletionTitle: "Done!", PlaceholderWidth: 512},
		Store:               domain.StoreSettings{Path: "data/logbot.db"},
		Images:              domain.ImageSettings{Path: "data/images", Timeout: "30s", MaxSize: "25MB"},
		Web:                 domain.WebSettings{ListenAddr: ":5001", PageSize: 9, ScopeChannel: "gbclyde", RateLimitRPS: 5, RateLimitBurst: 10},
		Logging:             domain.LoggingSettings{Level: "info"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*domain.Config) {}},
		{name: "observed bot optional", mutate: func(c *domain.Config) { c.Discord.ObservedBotID = "" }},
		{name: "bad observed bot", mutate: func(c *domain.Config) { c.Discord.ObservedBotID = "clyde" }, wantErr: "observed_bot_id"},
		{name: "empty title", mutate: func(c *domain.Config) { c.Lifecycle.CompletionTitle = " " }, wantErr: "completion_title"},
		{name: "zero width", mutate: func(c *domain.Config) { c.Lifecycle.PlaceholderWidth = 0 }, wantErr: "placeholder_width"},
		{name: "no store path", mutate: func(c *domain.Config) { c.Store.Path = "" }, wantErr: "store.path"},
		{name: "no image path", mutate: func(c *domain.Config) { c.Images.Path = "" }, wantErr: "images.path"},
		{name: "bad timeout", mutate: func(c *domain.Config) { c.Images.Timeout = "soon" }, wantErr: "images.timeout"},
		{name: "bad size", mutate: func(c *domain.Config) { c.Images.MaxSize = "lots" }, wantErr: "images.max_size"},
		{name: "zero page size", mutate: func(c *domain.Config) { c.Web.PageSize = 0 }, wantErr: "page_size"},
		{name: "burst required", mutate: func(c *domain.Config) { c.Web.RateLimitBurst = 0 }, wantErr: "rate_limit_burst"},
		{name: "limiter off", mutate: func(c *domain.Config) { c.Web.RateLimitRPS = 0; c.Web.RateLimitBurst = 0 }},
		{name: "bad level", mutate: func(c *domain.Config) { c.Logging.Level = "loud" }, wantErr: "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateForBotRequiresToken(t *testing.T) {
	cfg := validConfig()
	if err := ValidateForBot(cfg); err == nil {
		t.Fatal("expected missing token error")
	}
	cfg.Discord.Token = "secret"
	if err := ValidateForBot(cfg); err != nil {
		t.Fatalf("ValidateForBot() error = %v", err)
	}
}
