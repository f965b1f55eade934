package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/yoockh/studycounsel/config"
	"github.com/yoockh/studycounsel/internal/api/handlers"
	"github.com/yoockh/studycounsel/internal/api/middleware"
	"github.com/yoockh/studycounsel/internal/api/routes"
	"github.com/yoockh/studycounsel/internal/bootstrap"
	"github.com/yoockh/studycounsel/internal/logger"
	"github.com/yoockh/studycounsel/internal/workers"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("init failed")
	}
	defer app.Close()

	worker := &workers.ReindexWorker{
		Embeddings: app.Embeddings,
		Schedule:   cfg.ReindexSchedule,
		RunTimeout: time.Hour,
		Logger:     log,
	}
	if err := worker.Start(ctx); err != nil {
		log.WithError(err).Fatal("reindex worker start failed")
	}
	defer worker.Stop()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log, app.Metrics))
	routes.RegisterRoutes(r, routes.Deps{
		Counselor: handlers.NewCounselorHandler(app.Sessions, app.Turns),
		Plan:      handlers.NewPlanHandler(app.Plans),
		Profile:   handlers.NewProfileHandler(app.Profiles),
		Chat:      handlers.NewChatHandler(app.Chat),
		Gatherer:  app.Registry,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("port", cfg.Port).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
}
