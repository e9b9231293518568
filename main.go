package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/kamau/chamacircle-go/config"
	"github.com/kamau/chamacircle-go/middleware"
	"github.com/kamau/chamacircle-go/routes"
	"github.com/kamau/chamacircle-go/utils"
)

func main() {
	utils.SetupLogging()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cfg.Store.Close(ctx); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	}()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "If-None-Match")
	r.Use(cors.New(corsCfg))

	routes.SetupRoutes(r, cfg)

	slog.Info("server listening", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}
