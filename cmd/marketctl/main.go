package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"prediction_market/internal/app/bootstrap"
	"prediction_market/internal/config"
	"prediction_market/internal/infrastructure/confirmation"
	"prediction_market/internal/infrastructure/notifier"
	"prediction_market/internal/pkg/logger"

	"github.com/fatih/color"
	slogzap "github.com/samber/slog-zap/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	assumeYes  bool
	verbose    bool

	cfg       *config.Config
	zapLogger *zap.Logger
	dimColor  = color.New(color.Faint)
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "marketctl",
		Short:         "Prediction market CLI",
		Long:          `marketctl connects to a wallet endpoint and trades on the prediction market contract.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !verbose {
				logrus.SetLevel(logrus.WarnLevel)
			}
			var err error
			cfg, err = config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			level := "warn"
			if verbose {
				level = "debug"
			}
			zapLogger, err = logger.NewZapLogger(level, true)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logger.InitSlog(slogzap.Option{Level: slog.LevelDebug, Logger: zapLogger}.NewZapHandler())
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if zapLogger != nil {
				_ = zapLogger.Sync()
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", getEnv("CONFIG_PATH", "config/config.yaml"), "Path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Confirm every transaction prompt without asking")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newSessionCmd(),
		newMarketsCmd(),
		newTokenCmd(),
		newCommentsCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// openApp wires the session with a terminal confirmation gate and restores an
// already authorized wallet account.
func openApp(ctx context.Context) (*bootstrap.App, error) {
	gate := confirmation.NewTerminal(nil, nil, assumeYes)
	app, err := bootstrap.Build(ctx, cfg, gate, notifier.NewConsole(os.Stderr), zapLogger)
	if err != nil {
		return nil, err
	}
	if err := app.Session.CheckExistingConnection(ctx); err != nil {
		zapLogger.Debug("No existing wallet session", zap.Error(err))
	}
	return app, nil
}

// withApp runs fn with a wired application and closes it afterwards.
func withApp(fn func(ctx context.Context, app *bootstrap.App) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()
		return fn(cmd.Context(), app)
	}
}
