package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/jobcraft/internal/config"
	"github.com/jonathan/jobcraft/internal/export"
	"github.com/jonathan/jobcraft/internal/server"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes REST endpoints for generating, listing and exporting
job profiles. Operator authentication is enabled when OPERATOR_PASSWORD_HASH is set;
JWT_SECRET is then required.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	auth, err := authConfig(cfg)
	if err != nil {
		return err
	}

	d, err := openDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	svc, err := newService(ctx, cfg, d, logger)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{Port: servePort, Auth: auth}, server.Deps{
		Generator: svc,
		Reference: d.source,
		Store:     d.store,
		Exporter:  export.New(logger),
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	if auth == nil {
		logger.Warn("OPERATOR_PASSWORD_HASH is not set; the API is open")
	}
	logger.Info("reference source", zap.String("kind", cfg.ReferenceSource))

	return srv.Start(ctx)
}

// authConfig returns nil when no operator password hash is configured.
func authConfig(c config.Config) (*server.AuthConfig, error) {
	if c.OperatorPasswordHash == "" {
		return nil, nil
	}
	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return nil, err
	}
	passwords, err := config.NewPasswordConfig()
	if err != nil {
		return nil, err
	}
	return &server.AuthConfig{PasswordHash: c.OperatorPasswordHash, Password: passwords, JWT: jwtCfg}, nil
}
