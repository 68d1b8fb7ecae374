package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"DatasetCatalog/internal/app"
	"DatasetCatalog/internal/config"
	"DatasetCatalog/internal/db"
	"DatasetCatalog/internal/logger"

	"github.com/spf13/cobra"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:           "catalog",
	Short:         "Dataset catalog query service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Init(debug)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending SQL migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		return db.Migrate(cfg.PostgresDSN, cfg.MigrationsDir)
	},
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd, migrateCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(ctx context.Context) error {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := db.InitPostgres(cfg.PostgresDSN); err != nil {
		logger.Error("postgres_init_failed", map[string]any{"error": err.Error()})
		return err
	}
	defer db.ClosePostgres()
	logger.Info("postgres_connected", nil)

	db.InitRedis(cfg.RedisAddr)
	if db.RDB != nil {
		if err := db.PingRedis(ctx); err != nil {
			logger.Warn("redis_unreachable", map[string]any{"error": err.Error()})
		}
		defer db.CloseRedis()
	}

	handler, err := app.Build(cfg, db.Pool, db.RDB)
	if err != nil {
		logger.Error("app_init_failed", map[string]any{"error": err.Error()})
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_start", map[string]any{"port": cfg.Port})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server_error", map[string]any{"error": err.Error()})
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server_shutdown", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
