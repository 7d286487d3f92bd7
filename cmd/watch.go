package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/okarpov/jobradar/internal/pipeline"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run discovery passes on an interval until interrupted",
	Run: func(cmd *cobra.Command, _ []string) {
		watch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Duration("interval", 0, "time between runs (default from config, 1h)")

	viper.BindPFlag("watch.interval", watchCmd.Flags().Lookup("interval"))
}

func watch(_ *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		log.Fatalf("starting %s: %s", app, err)
	}
	defer a.Close()

	interval := time.Hour
	if a.Config.Watch != nil && a.Config.Watch.Interval > 0 {
		interval = a.Config.Watch.Interval
	}

	a.Logger.Info("starting watch mode",
		zap.String("version", version),
		zap.Duration("interval", interval),
	)

	runner := pipeline.NewRunner(a.Pipeline(), interval, a.Logger)

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Fatal("watch loop failed", zap.Error(err))
	}

	a.Logger.Info("watch mode stopped")
}
