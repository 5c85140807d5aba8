// Package cli is the tabletop command line: it serves the web UI and exposes the session and campaign
// operations as subcommands.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/tabletop/internal/config"
	"github.com/sidereusnuntius/tabletop/internal/state"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

type options struct {
	v          *viper.Viper
	configFile string
}

func newRootCmd() *cobra.Command {
	home, _ := os.UserHomeDir()
	opts := &options{v: config.New(home)}

	root := &cobra.Command{
		Use:   "tabletop",
		Short: "Campaign manager client",
		Long: `tabletop talks to a campaign manager backend. It keeps the login session on disk,
serves a web UI over it and lets campaigns, characters and imports be managed from the shell.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default is ./tabletop.yaml)")
	flags.String("api", "", "backend API base URL")
	flags.String("db", "", "sqlite database file")
	flags.Bool("debug", false, "enable debug logging")
	opts.v.BindPFlag(config.KeyApiUrl, flags.Lookup("api"))
	opts.v.BindPFlag(config.KeyDbUrl, flags.Lookup("db"))
	opts.v.BindPFlag(config.KeyDebug, flags.Lookup("debug"))

	root.AddCommand(
		newServeCmd(opts),
		newLoginCmd(opts),
		newRegisterCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newCampaignsCmd(opts),
		newCharactersCmd(opts),
		newImportCmd(opts),
	)
	return root
}

func (o *options) config() (config.Configuration, error) {
	if o.configFile != "" {
		o.v.SetConfigFile(o.configFile)
	}
	cfg, err := config.ReadConfig(o.v)
	if err != nil {
		return cfg, err
	}
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	return cfg, nil
}

// open reads the configuration and builds the application state. The caller must tear it down.
func (o *options) open(cmd *cobra.Command) (*state.State, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	s, err := state.New(cmd.Context(), cfg, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize")
		return nil, err
	}
	return s, nil
}
