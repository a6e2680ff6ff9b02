// Command portal serves the insurance portal and offers read-only CLI access to the
// insurance API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iskrendev/insurance-portal/internal/platform/config"
	"github.com/iskrendev/insurance-portal/internal/platform/logging"
)

// globals holds the persistent flags and what PersistentPreRunE derives from them.
type globals struct {
	configPath string
	verbose    bool
	apiURL     string
	session    string

	cfg config.Config
	log *zap.Logger
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	g := &globals{}

	cmd := &cobra.Command{
		Use:           "portal",
		Short:         "Insurance records portal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			path := g.configPath
			if path == "" {
				path = os.Getenv("PORTAL_CONFIG")
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if g.apiURL != "" {
				cfg.API.BaseURL = g.apiURL
				cfg.API.Backend = config.BackendREST
			}
			if g.verbose {
				cfg.Log.Level = "debug"
				cfg.Log.Format = "console"
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			g.cfg, g.log = cfg, log
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if g.log != nil {
				_ = g.log.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "config file (YAML); defaults to $PORTAL_CONFIG")
	cmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "debug logging to the console")
	cmd.PersistentFlags().StringVar(&g.apiURL, "api", "", "insurance API base URL (overrides the config)")
	cmd.PersistentFlags().StringVar(&g.session, "session", "", "backend session cookie value for CLI commands")

	cmd.AddCommand(
		serveCmd(g),
		listCmd(g),
		searchCmd(g),
		showCmd(g),
		summaryCmd(g),
	)
	return cmd
}
