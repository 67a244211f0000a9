package commands

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bnrubin/discord-logbot/internal/app"
	configapp "github.com/bnrubin/discord-logbot/internal/application/config"
	"github.com/bnrubin/discord-logbot/internal/infrastructure/discord"
	"github.com/bnrubin/discord-logbot/internal/infrastructure/web"
)

// NewRunCommand creates the run command: gateway listener and web listing together
func NewRunCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the Discord listener and the web listing",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := deps.Container(cmd.Context())
			if err != nil {
				return err
			}
			if err := configapp.ValidateForBot(container.Config); err != nil {
				return err
			}

			group, ctx := errgroup.WithContext(cmd.Context())
			group.Go(func() error { return runBot(ctx, container) })
			group.Go(func() error { return runWeb(ctx, container) })
			return group.Wait()
		},
	}
}

// NewBotCommand creates the bot command
func NewBotCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run only the Discord listener",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := deps.Container(cmd.Context())
			if err != nil {
				return err
			}
			if err := configapp.ValidateForBot(container.Config); err != nil {
				return err
			}
			return runBot(cmd.Context(), container)
		},
	}
}

// NewWebCommand creates the web command
func NewWebCommand(deps *Deps) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Run only the web listing",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := deps.Container(cmd.Context())
			if err != nil {
				return err
			}
			if err := configapp.Validate(container.Config); err != nil {
				return err
			}
			if addr != "" {
				container.Config.Web.ListenAddr = addr
			}
			return runWeb(cmd.Context(), container)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Override web.listen_addr")
	return cmd
}

func runBot(ctx context.Context, container *app.Container) error {
	bot, err := discord.NewBot(
		container.Config.Discord.Token,
		container.Config.Discord.MessageCacheSize,
		container.LifecycleService,
		container.Logger.With("discord"),
	)
	if err != nil {
		return err
	}
	return bot.Run(ctx)
}

func runWeb(ctx context.Context, container *app.Container) error {
	cfg := container.Config.Web
	server, err := web.NewServer(web.Options{
		Search:         container.SearchService,
		Health:         container.Store,
		Metrics:        container.Metrics,
		Logger:         container.Logger.With("web"),
		ImageDir:       container.Config.Images.Path,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})
	if err != nil {
		return err
	}
	return server.Run(ctx, cfg.ListenAddr)
}
