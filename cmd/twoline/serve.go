package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/SscSPs/twoline_ledger/internal/handlers"
	"github.com/SscSPs/twoline_ledger/internal/middleware"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := slog.Default()

			container, closeRepos, err := newContainer(ctx, cfg, true)
			if err != nil {
				return err
			}
			defer closeRepos()

			if cfg.IsProduction {
				gin.SetMode(gin.ReleaseMode)
			}

			r := gin.New()
			r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
			if err := r.SetTrustedProxies(nil); err != nil {
				return err
			}
			if err := handlers.RegisterRoutes(r, cfg, container); err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           r,
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("storage", cfg.StorageDriver))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				logger.Info("Shutting down server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}
}
