package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	routes "github.com/arvue/arvue/internal/api"
	"github.com/arvue/arvue/internal/auth"
	"github.com/arvue/arvue/internal/config"
	"github.com/arvue/arvue/internal/db"
	"github.com/arvue/arvue/internal/media"
	"github.com/arvue/arvue/internal/models"
	"github.com/arvue/arvue/pkg/logger"
	storage "github.com/arvue/arvue/pkg/redis"
	"github.com/arvue/arvue/pkg/utils"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.LoadConfig()
	auth.SetSecret(cfg.JWTSecret)

	log, err := logger.NewLogger(ctx, logger.WithOutputDir(cfg.LogDir))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer log.Close()

	var rclient *storage.RedisClient
	if cfg.RedisAddr != "" {
		rclient, err = storage.NewRedis(ctx, cfg.RedisAddr, "")
		if err != nil {
			log.Error(ctx).WithMeta(utils.Map{"error": err.Error()}).Logs("Failed to initialize Redis")
			panic(err)
		}
		defer rclient.Close(log)
	} else {
		log.Warn(ctx).Logs("Redis not configured, running without cache")
	}

	gormDB, err := db.NewDB(ctx, cfg.DSN(), models.RegisterModels(), db.WithLogger(log))
	if err != nil {
		log.Error(ctx).WithMeta(utils.Map{"error": err.Error()}).Logs("Failed to initialize database")
		panic("DB init failed")
	}
	defer db.CloseDB(log)

	store := media.NewHTTPStore(cfg.MediaBaseURL, cfg.MediaCloud, cfg.MediaAPIKey)

	app := fiber.New(fiber.Config{
		BodyLimit: 25 << 20,
		AppName:   "arvue",
	})
	routes.NewRoutes(app, cfg, gormDB, log, rclient, store)

	go func() {
		if err := app.Listen(cfg.ServerAddr); err != nil {
			log.Error(ctx).WithMeta(utils.Map{"error": err.Error()}).Logs("Server stopped")
			cancel()
		}
	}()
	log.Info(ctx).WithMeta(utils.Map{"addr": cfg.ServerAddr}).Logs("Server listening")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Info(ctx).Logs("Shutting down")
	cancel()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error(context.Background()).WithMeta(utils.Map{"error": err.Error()}).Logs("Forced shutdown")
	}
}
