package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/glider-ops-api/api/swagger"
	"github.com/noah-isme/glider-ops-api/internal/handler"
	"github.com/noah-isme/glider-ops-api/internal/middleware"
	"github.com/noah-isme/glider-ops-api/pkg/config"
	"github.com/noah-isme/glider-ops-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/glider-ops-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/glider-ops-api/pkg/middleware/requestid"
)

const shutdownTimeout = 10 * time.Second

func serveCommand(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port == 0 {
				port = a.cfg.Port
			}
			return runServe(cmd.Context(), a, port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (defaults to PORT)")
	return cmd
}

func newRouter(a *app) *gin.Engine {
	if a.cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(a.logger))
	r.Use(corsmiddleware.New(a.cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(a.metrics))

	handler.RegisterRoutes(r, r.Group(a.cfg.APIPrefix), handler.Handlers{
		Seasons:  handler.NewSeasonHandler(a.seasons, a.archiver, a.statistics, a.masterList),
		Stations: handler.NewStationHandler(a.stations),
		Metrics:  handler.NewMetricsHandler(a.metrics, a.db),
	})

	if a.cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

func runServe(ctx context.Context, a *app, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           newRouter(a),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Sugar().Infow("server starting", "addr", srv.Addr, "env", a.cfg.Env)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	<-errCh
	return nil
}
