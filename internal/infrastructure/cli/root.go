package cli

import (
	"github.com/spf13/cobra"

	"github.com/bnrubin/discord-logbot/internal/app"
	"github.com/bnrubin/discord-logbot/internal/infrastructure/cli/commands"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command. The container is built lazily by the
// subcommands that need it; the returned cleanup closes it.
func NewRootCmd(opts Options) (*cobra.Command, func() error) {
	deps := &commands.Deps{Options: app.Options{Verbose: opts.Verbose}}

	root := &cobra.Command{
		Use:   "logbot",
		Short: "logbot - archive of AI image generations posted to Discord",
		Long: "logbot watches a generation bot's message edits, keeps a record of every finished image, " +
			"and serves a searchable listing of them.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&deps.Options.ConfigPath, "config", "", "Config file (default ./logbot.yaml or $LOGBOT_CONFIG)")
	flags.StringVar(&deps.Options.EnvFile, "env-file", "", "Secrets file (default ./.env)")
	flags.BoolVarP(&deps.Options.Verbose, "verbose", "v", opts.Verbose, "Enable debug logging")

	root.AddCommand(
		commands.NewRunCommand(deps),
		commands.NewBotCommand(deps),
		commands.NewWebCommand(deps),
		commands.NewRecordsCommand(deps),
		commands.NewDoctorCommand(deps),
		commands.NewConfigCommand(deps),
		commands.NewVersionCommand(),
	)
	return root, deps.Close
}
