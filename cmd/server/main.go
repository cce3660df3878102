package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/fastygo/dispatch/internal/app"
	"github.com/fastygo/dispatch/internal/config"
	"github.com/fastygo/dispatch/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Service:  cfg.AppName,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(appCtx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("startup failed", zap.Error(err))
	}
	application.Listen(cancel)
	application.Start()

	if err := application.Wait(appCtx); err != nil {
		zapLogger.Error("server stopped", zap.Error(err))
	}

	if err := application.Close(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
