package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prediction_market/internal/app/bootstrap"
	"prediction_market/internal/app/service"
	"prediction_market/internal/config"
	"prediction_market/internal/infrastructure/confirmation"
	"prediction_market/internal/infrastructure/notifier"
	"prediction_market/internal/infrastructure/repository/sqlite"
	"prediction_market/internal/infrastructure/restapi"
	"prediction_market/internal/pkg/logger"
	"prediction_market/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"golang.org/x/sync/errgroup"
)

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func main() {
	cfgPath := getEnv("CONFIG_PATH", "config/config.yaml")
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.NewZapLogger(cfg.Logging.Level, false)
	if err != nil {
		logrus.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync() //nolint:errcheck

	logger.InitSlog(zapslog.NewHandler(zapLogger.Core(), zapslog.WithName("marketd")))
	if cfg.Logging.File != "" {
		file, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err == nil {
			logrus.SetOutput(file)
		} else {
			logrus.Infof("Failed to log to file, using default stdout: %v", err)
		}
	}
	zapLogger.Info("Configuration loaded", zap.String("path", cfgPath))

	metrics.MustRegisterMetrics()

	if err := run(cfg, zapLogger); err != nil {
		zapLogger.Fatal("marketd stopped", zap.Error(err))
	}
	zapLogger.Info("Server exiting")
}

func run(cfg *config.Config, zapLogger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	feed := notifier.NewFeed(time.Duration(cfg.Notifications.TTLSeconds)*time.Second, zapLogger)
	confirmations := confirmation.NewRegistry(0, zapLogger)

	app, err := bootstrap.Build(ctx, cfg, confirmations, feed, zapLogger)
	if err != nil {
		return err
	}
	defer app.Close()

	repo, err := sqlite.Open(ctx, cfg.Comments.DBPath, zapLogger)
	if err != nil {
		return err
	}
	defer repo.Close()

	comments := service.NewCommentService(repo, logger.NewSlogAdapter(), cfg.Comments.MaxContentLength)

	if err := app.Session.CheckExistingConnection(ctx); err != nil {
		zapLogger.Warn("No existing wallet session restored", zap.Error(err))
	}

	gin.SetMode(gin.ReleaseMode)
	router := restapi.SetupRouter(restapi.Handlers{
		Comments: restapi.NewCommentHandler(comments, zapLogger),
		Session:  restapi.NewSessionHandler(app.Session, feed, confirmations),
		Markets:  restapi.NewMarketHandler(app.Markets),
	}, restapi.RouterOptions{
		AllowOrigins:      cfg.Server.AllowOrigins,
		EnablePprof:       cfg.Server.EnablePprof,
		EnableSwagger:     cfg.Server.EnableSwagger,
		SwaggerSpec:       cfg.Server.SwaggerSpec,
		CommentsPerMinute: cfg.RateLimit.CommentsPerMinute,
		CommentsBurst:     cfg.RateLimit.Burst,
	}, zapLogger)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zapLogger.Info(fmt.Sprintf("Server starting on port %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	if app.Session.HasWallet() {
		g.Go(func() error {
			if err := app.Session.Run(gCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	} else {
		zapLogger.Warn("Wallet events disabled, no wallet endpoint configured")
	}
	g.Go(func() error {
		<-gCtx.Done()
		zapLogger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("Session and server stopped")
	return nil
}
