package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"github.com/Prabhakar2095/Budget-Working/internal/server"
)

func newServeCmd(opts *options) *cobra.Command {
	var (
		port int
		dev  bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default command)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.cfg
			// config.toml wins over the flag
			if port > 0 && !opts.info.PortSpecified {
				cfg.Server.Port = port
			}
			if dev {
				cfg.Server.DevMode = true
			}

			srv, err := server.NewServer(cfg)
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Run(fmt.Sprintf(":%d", cfg.Server.Port))
			}()
			log.Info().Int("port", cfg.Server.Port).Str("url", fmt.Sprintf("http://localhost:%d/api/v1/health", cfg.Server.Port)).Msg("budget planner started")

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server failed: %w", err)
				}
			case <-quit:
			}

			log.Info().Msg("shutting down")
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (only when config.toml does not set one)")
	cmd.Flags().BoolVar(&dev, "dev", false, "development mode")
	return cmd
}
