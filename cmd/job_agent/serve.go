package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-autopilot/internal/config"
	"github.com/jonathan/job-autopilot/internal/server"
	"github.com/jonathan/job-autopilot/internal/server/ratelimit"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start the HTTP API used by the dashboard. Every route except /health requires a bearer token.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from PORT, else 8000)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}

	return withApp(func(_ context.Context, a *app) error {
		port := servePort
		if port == 0 {
			port = a.cfg.Port
		}
		srv, err := server.New(a.svc, server.Config{
			Port:           port,
			AllowedOrigins: a.cfg.AllowedOrigins,
			RateLimit:      ratelimit.LoadConfig(),
			JWT:            jwtCfg,
		})
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}
		return srv.Start()
	})
}
