package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"civic-issues-be/config"
	"civic-issues-be/middlewares"
	"civic-issues-be/routes"
	"civic-issues-be/services"
	"civic-issues-be/storage"
	"civic-issues-be/utils"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadRuntime()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, log)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close(context.Background())

	var counter middlewares.RateCounter
	if cfg.RateLimitEnabled() {
		rdb, err := config.ConnectRedis(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer rdb.Close()
		counter = middlewares.RedisCounter{Client: rdb}
	} else {
		log.Info("issue rate limiting disabled")
	}

	media, err := storage.NewLocalMedia(cfg.UploadDir, cfg.MaxUploadBytes, log)
	if err != nil {
		return fmt.Errorf("upload dir: %w", err)
	}
	tokens, err := utils.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}

	router := routes.NewRouter(routes.Dependencies{
		Config:      cfg,
		Log:         log,
		Tokens:      tokens,
		Issues:      services.NewIssueService(st.issues, media, log),
		Auth:        services.NewAuthService(st.admins, tokens, log),
		Export:      services.NewExportService(st.issues, log),
		RateCounter: counter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
