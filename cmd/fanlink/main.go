package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"fanlink/internal/config"
	"fanlink/internal/server"
)

func main() {
	root := &cobra.Command{
		Use:          "fanlink",
		Short:        "Chiliz fan token workflow node",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("log.level", config.DefaultLogLevel, "log level (trace, debug, info, warn, error)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the node HTTP contract",
		RunE:  runServe,
	}
	serveCmd.Flags().String("server.host", config.DefaultHost, "listen host")
	serveCmd.Flags().Int("server.port", config.DefaultPort, "listen port")
	root.AddCommand(serveCmd)

	describeCmd := &cobra.Command{
		Use:   "describe",
		Short: "Print the node descriptor as JSON",
		RunE:  runDescribe,
	}
	root.AddCommand(describeCmd)

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll trigger events on an interval and print them",
		RunE:  runWatch,
	}
	watchCmd.Flags().String("network", "", "network to watch")
	watchCmd.Flags().StringSlice("events", nil, "events to watch (newBlock, newPoll, newReward, priceChange)")
	watchCmd.Flags().String("trigger.checkpointDir", config.DefaultCheckpointDir, "cursor checkpoint directory, empty to disable")
	watchCmd.Flags().Int("trigger.interval", config.DefaultTriggerInterval, "poll interval in milliseconds")
	root.AddCommand(watchCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	return config.Load(cfgFile, cmd.Flags())
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		// Basic logger for startup errors
		log := zerolog.New(os.Stderr).With().Timestamp().Logger()
		log.Error().Err(err).Msg("failed to load config")
		return err
	}

	logger := setupLogger(cfg.Log.Level, cfg.Log.Pretty)
	logger.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Int("networks", len(cfg.Networks)).
		Int("tokens", len(cfg.Tokens)).
		Msg("starting fanlink")

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create server")
		return err
	}

	if err := srv.Start(); err != nil {
		logger.Error().Err(err).Msg("failed to start server")
		return err
	}

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeoutDuration())
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		logger.Error().Err(err).Msg("error during shutdown")
		return err
	}
	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(level string, pretty bool) zerolog.Logger {
	var logLevel zerolog.Level
	switch level {
	case "trace":
		logLevel = zerolog.TraceLevel
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	var output io.Writer = os.Stdout
	if pretty {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(output).With().Timestamp().Logger()
}
