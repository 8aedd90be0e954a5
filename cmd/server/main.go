package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/roomrelay/internal/app"
	"github.com/vovakirdan/roomrelay/internal/config"
	applog "github.com/vovakirdan/roomrelay/internal/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "roomrelay",
		Short:         "Multi-room chat relay over websockets",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			boot := applog.New("info", "console")

			cfg, path, err := config.Load(boot, configPath, cmd.Flags())
			if err != nil {
				boot.Error().Err(err).Str("path", path).Msg("failed to load config")
				return err
			}

			logger := applog.New(cfg.LogLevel, cfg.LogFormat)
			logger.Info().Str("config", path).Str("addr", cfg.Addr).Msg("starting roomrelay server")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := app.New(&cfg, logger).Run(ctx); err != nil {
				logger.Error().Err(err).Msg("server exited with error")
				return fmt.Errorf("run server: %w", err)
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}

	def := config.Default()
	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "path to config file")
	flags.String("addr", def.Addr, "HTTP listen address")
	flags.Duration("read-header-timeout", def.ReadHeaderTimeout, "HTTP read header timeout")
	flags.Duration("shutdown-timeout", def.ShutdownTimeout, "graceful shutdown timeout")
	flags.String("log-level", def.LogLevel, "log level (debug, info, warn, error)")
	flags.String("log-format", def.LogFormat, "log format (console, json)")
	flags.Int64("max-message-bytes", def.MaxMessageBytes, "max inbound websocket frame size")
	flags.Int("rate-limit", def.RateLimitPerMinute, "inbound frames per minute per connection (0 disables)")
	flags.Int("client-buffer", def.ClientBuffer, "outbound events buffered per connection")
	flags.StringSlice("allowed-origins", nil, "websocket origin patterns to accept")

	return cmd
}
