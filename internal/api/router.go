package api

import (
	"github.com/gin-gonic/gin"

	"pmr-generator/internal/config"
	"pmr-generator/internal/report"
	"pmr-generator/internal/session"
	"pmr-generator/internal/source"
)

func SetupRouter(cfg *config.Config, store *session.Store, fetcher *source.SheetFetcher, runner *report.Runner) *gin.Engine {
	r := gin.Default()
	subpath := cfg.Server.Subpath // e.g. "/pmr" or any custom path, always starts with '/'

	group := r.Group(subpath)
	{
		group.GET("/health", healthHandler)
		group.GET("/config", configHandler(cfg))

		// Dataset ingestion
		group.POST("/datasets", UploadDatasetHandler(store))
		group.POST("/datasets/link", LinkDatasetHandler(store, fetcher))

		// Dashboard data
		group.GET("/datasets/:id", GetDatasetHandler(store))
		group.GET("/datasets/:id/filters", FilterChoicesHandler(store))
		group.GET("/datasets/:id/summary", SummaryHandler(store))
		group.GET("/datasets/:id/grouped", GroupedHandler(store))
		group.GET("/datasets/:id/export", DataExportHandler(store))

		// PDF export jobs
		group.POST("/datasets/:id/reports", CreateReportHandler(store, cfg, runner))
		group.GET("/reports/:job", GetReportHandler(runner))

		// --- Streaming WebSocket endpoint ---
		group.GET("/ws/reports/:job", WSReportProgressHandler(runner))
	}
	return r
}
