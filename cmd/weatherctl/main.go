package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-forecast/internal/app"
	"github.com/i474232898/weather-forecast/internal/config"
	"github.com/i474232898/weather-forecast/internal/observability"
	"github.com/i474232898/weather-forecast/internal/service"
)

type ctxKey struct{}

var rootCmd = &cobra.Command{
	Use:   "weatherctl",
	Short: "weatherctl - weather archive and forecast operator tool",
	Long: `weatherctl runs ingestion, training and forecasting against the same
database and artifact directory the server uses.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
		a, err := app.Build(cfg, log, observability.NewMetricsForTesting())
		if err != nil {
			return err
		}
		cmd.SetContext(context.WithValue(cmd.Context(), ctxKey{}, a))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if a, ok := cmd.Context().Value(ctxKey{}).(*app.App); ok {
			return a.Close()
		}
		return nil
	},
}

func serviceFrom(cmd *cobra.Command) *service.Service {
	return cmd.Context().Value(ctxKey{}).(*app.App).Service
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
