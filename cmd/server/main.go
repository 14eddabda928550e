package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dawudu11/burptracker/internal"
	"github.com/dawudu11/burptracker/internal/api"
	"github.com/dawudu11/burptracker/internal/config"
	"github.com/dawudu11/burptracker/internal/storage"
	"github.com/dawudu11/burptracker/internal/ws"
)

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	repos, err := newRepositories(cfg, logger)
	if err != nil {
		logger.Fatalf("failed to init storage: %v", err)
	}
	defer repos.Closer.Close()

	hub := ws.NewHub(logger)
	go hub.Run()

	app := api.NewServer(logger, repos, hub)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	api.RegisterRoutes(r, app)

	logger.Infof("Server running on :%s (storage=%s, env=%s)", cfg.Port, cfg.DBType, cfg.Env)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatalf("failed to start server: %v", err)
	}
}

func newLogger(cfg *config.Config) (internal.Logger, error) {
	var zcfg zap.Config
	if cfg.Env == "production" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	if level, err := zap.ParseAtomicLevel(cfg.LogLevel); err == nil {
		zcfg.Level = level
	}
	z, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return internal.NewZapLogger(z.Sugar()), nil
}

func newRepositories(cfg *config.Config, logger internal.Logger) (*storage.Repositories, error) {
	if cfg.DBType == "postgres" {
		return storage.NewPostgresRepositories(cfg.DBDSN, logger)
	}
	if _, err := os.Stat("data"); os.IsNotExist(err) {
		_ = os.Mkdir("data", 0755)
	}
	return storage.NewFileRepositories(cfg.FileUsers, cfg.FileGroups, cfg.FileSessions, logger)
}
