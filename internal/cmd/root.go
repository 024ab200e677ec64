package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/RoyceAzure/lab/parkeat/internal/config"
	"github.com/RoyceAzure/lab/parkeat/internal/constants"
	"github.com/RoyceAzure/lab/parkeat/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configFile string
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "parkeat",
		Short: "ParkEat - order food from your table",
		Long: `ParkEat keeps the client state of the ordering app: session, cart, orders,
notifications and location.

Run it as a local HTTP server for a presentation layer, or use the CLI
commands to browse the catalog and walk through a demo order.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file (default ./config.yaml)")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newDemoCmd(opts),
		newCatalogCmd(),
	)
	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(opts *rootOptions, logOut io.Writer) (*config.Manager, zerolog.Logger, error) {
	manager, err := config.Load(opts.configFile)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	cfg := manager.Get()
	level, format := cfg.Log.Level, cfg.Log.Format
	switch constants.ENV(cfg.Env) {
	case constants.Debug:
		level = "debug"
	case constants.Prod:
		format = logger.FormatJSON
	}
	l, err := logger.New(level, format, logOut)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if file := manager.ConfigFile(); file != "" {
		l.Info().Str("file", file).Msg("config loaded")
	}
	return manager, l, nil
}
