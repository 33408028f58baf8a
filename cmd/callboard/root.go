// AngelaMos | 2026
// root.go

package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/callboard/internal/config"
)

var version = "dev"

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "callboard",
		Short: "Classified ads board API",
		Long: `callboard serves a classified-ads API: users post ads, leave feedback on
them, and edit or remove only what they authored unless they are admins.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(
		&opts.configPath, "config", "c", "config.yaml", "path to config file",
	)

	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newKeygenCmd(),
		newCreateAdminCmd(opts),
	)

	return cmd
}

// loadConfig treats a missing default config file as "use defaults and
// environment only".
func (o *rootOptions) loadConfig() (*config.Config, error) {
	path := o.configPath
	if _, err := os.Stat(path); os.IsNotExist(err) && path == "config.yaml" {
		path = ""
	}
	return config.Load(path)
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
