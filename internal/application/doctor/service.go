package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"

	appconfig "github.com/bnrubin/discord-logbot/internal/application/config"
	"github.com/bnrubin/discord-logbot/internal/domain"
	"github.com/bnrubin/discord-logbot/internal/pkg/filesystem"
	"github.com/bnrubin/discord-logbot/internal/ports"
)

// StoreChecker is the part of the record repository diagnostics need.
type StoreChecker interface {
	Ping(ctx context.Context) error
	Path() string
}

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Store          StoreChecker
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	if s.ConfigProvider == nil {
		return domain.HealthReport{}, errors.New("doctor.Service dependencies not satisfied")
	}

	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("loaded format %s", cfg.ConfigFormatVersion)))

	if err := appconfig.Validate(cfg); err != nil {
		checks = append(checks, fail("Config values", err.Error()))
	} else {
		checks = append(checks, ok("Config values", "valid"))
	}

	checks = append(checks, s.storeCheck(ctx))
	checks = append(checks, imageDirCheck(cfg))
	checks = append(checks, tokenCheck(cfg))
	checks = append(checks, observedBotCheck(cfg))

	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) storeCheck(ctx context.Context) domain.HealthCheck {
	if s.Store == nil {
		return warn("Record store", "store not initialized")
	}
	if err := s.Store.Ping(ctx); err != nil {
		return fail("Record store", fmt.Sprintf("%s unreachable: %v", s.Store.Path(), err))
	}
	return ok("Record store", s.Store.Path())
}

func imageDirCheck(cfg domain.Config) domain.HealthCheck {
	if err := filesystem.EnsureWritableDir(cfg.Images.Path); err != nil {
		return fail("Image directory", fmt.Sprintf("%s not writable: %v", cfg.Images.Path, err))
	}
	details := cfg.Images.Path
	if limit, err := cfg.MaxImageBytes(); err == nil && limit > 0 {
		details = fmt.Sprintf("%s (max %s per image)", details, humanize.Bytes(uint64(limit)))
	}
	return ok("Image directory", details)
}

func tokenCheck(cfg domain.Config) domain.HealthCheck {
	if !cfg.HasDiscordToken() {
		return warn("Discord token", "DISCORD_TOKEN missing; only the web listing can run")
	}
	return ok("Discord token", "present")
}

func observedBotCheck(cfg domain.Config) domain.HealthCheck {
	if cfg.Discord.ObservedBotID == "" {
		return warn("Observed bot", "discord.observed_bot_id unset; edits from any bot are considered")
	}
	return ok("Observed bot", cfg.Discord.ObservedBotID)
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
