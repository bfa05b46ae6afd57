package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/youruser/imagefetch/internal/api"
	"github.com/youruser/imagefetch/internal/config"
	imagepkg "github.com/youruser/imagefetch/internal/image"
	"github.com/youruser/imagefetch/internal/logging"
	"github.com/youruser/imagefetch/internal/pipeline"
	"github.com/youruser/imagefetch/internal/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(os.Stdout, logging.Config{Format: cfg.LogFormat, Level: cfg.LogLevel})

	runner := pipeline.New(imagepkg.NewFetcher(cfg.FetchTimeout, cfg.NoPicture), pipeline.Options{
		OutputDir:   cfg.OutputDir,
		WebPQuality: cfg.WebPQuality,
		Progress: func(done, total int, o report.Outcome) {
			slog.Info("progress", "done", done, "total", total, "article", o.ArticleNumber, "outcome", o.Kind.String())
		},
	})

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	api.RegisterRoutes(r, api.NewHandler(runner, cfg.OutputDir, cfg.PublicBaseURL))

	slog.Info("starting server", "addr", "http://localhost:"+cfg.ServerPort, "output_dir", cfg.OutputDir)
	if err := r.Run(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
