package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"marketbar/internal/config"
	"marketbar/internal/logging"
	"marketbar/internal/plugin"
	"marketbar/internal/provider"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd(os.Stdout, os.Stderr)
	err := cmd.ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err, os.Stderr))
}

// exitCode prints err for the user and maps it to the process status.
func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, provider.ErrUnavailable) {
		fmt.Fprintln(stderr, "Unable to connect")
		return 1
	}
	fmt.Fprintln(stderr, err)
	return 1
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		configPath string
		profile    string
		refresh    bool
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   "marketbar",
		Short: "Stock quotes for xbar/SwiftBar menu bars",
		Long: "marketbar prints stock, index and future quotes in the xbar/SwiftBar plugin format.\n" +
			"Outside market hours the last snapshot is reused from the cache file and marked with ☾.",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if home, err := os.UserHomeDir(); err == nil {
				if err := config.LoadEnvFile(filepath.Join(home, config.DefaultEnvFile)); err != nil {
					return err
				}
			}
			cfg, err := config.Load(configPath, profile)
			if err != nil {
				return err
			}
			logCfg := logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}
			if debug {
				logCfg = logging.Config{Level: "debug", Format: "console"}
			}
			logger := logging.New(logCfg, stderr)
			logger.Debug().Str("profile", cfg.Profile).Strs("symbols", cfg.Symbols).Msg("config loaded")

			r, err := plugin.New(cfg, plugin.Options{
				Out:     stdout,
				Logger:  logger,
				Refresh: refresh,
			})
			if err != nil {
				return err
			}
			return r.Run(cmd.Context())
		},
	}

	defaultConfig := os.Getenv("MARKETBAR_CONFIG")
	if defaultConfig == "" {
		defaultConfig = config.DefaultPath()
	}
	cmd.Flags().StringVar(&configPath, "config", defaultConfig, "path to YAML config (optional)")
	cmd.Flags().StringVar(&profile, "profile", "", fmt.Sprintf("built-in profile %v (default from config, then %q)", config.Profiles(), config.DefaultProfile))
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore the cache and fetch fresh quotes")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging on stderr")
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd
}
