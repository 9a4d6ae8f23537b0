package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/docprep/api/handlers"
	"github.com/feichai0017/docprep/api/routes"
	"github.com/feichai0017/docprep/config"
	"github.com/feichai0017/docprep/internal/service/casepkg"
	"github.com/feichai0017/docprep/internal/settings"
	"github.com/feichai0017/docprep/internal/templates"
	"github.com/feichai0017/docprep/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg := config.GetAppConfig()
	if *configPath != "" {
		fileCfg, err := config.LoadFile(*configPath)
		if err != nil {
			panic(err)
		}
		cfg = fileCfg
	}

	// init logger
	outputs := []string{"stdout"}
	if cfg.LogFile != "" {
		outputs = append(outputs, cfg.LogFile)
	}
	log, err := logger.NewLogger(
		logger.WithLevel(cfg.LogLevel),
		logger.WithEncoding(cfg.LogEncoding),
		logger.WithOutputPaths(outputs),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// init services
	store := settings.NewStore(cfg.SettingsFile)
	provider := templates.NewProvider(cfg.TemplatesDir)
	service := casepkg.NewService(provider, log)

	// init handlers
	h := handlers.NewHandlers(service, store, log)
	r := gin.New()
	r.Use(gin.Recovery())
	routes.SetupRoutes(r, h)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	// start server
	go func() {
		log.Info("Server starting", logger.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error:", logger.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown:", logger.Error(err))
	}
}
