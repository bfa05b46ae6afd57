package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(r *gin.Engine, h *Handler) {
	api := r.Group("/api")
	{
		api.GET("/health", health)
		api.POST("/runs", h.createRun)
		api.GET("/runs/:run/report", h.downloadReport)
		api.GET("/runs/:run/qr", h.reportQR)
	}
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
