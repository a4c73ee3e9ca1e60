package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pmr-generator/internal/config"
	"pmr-generator/internal/pmr"
	"pmr-generator/internal/session"
)

// GET /health
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// GET /config
func configHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only return non-sensitive config fields
		c.JSON(http.StatusOK, gin.H{
			"server": gin.H{
				"host":    cfg.Server.Host,
				"port":    cfg.Server.Port,
				"subpath": cfg.Server.Subpath,
			},
			"report": gin.H{
				"department":  cfg.Report.Department,
				"government":  cfg.Report.Government,
				"orientation": cfg.Report.Orientation,
			},
		})
	}
}

// apiError maps the error taxonomy to a response. Only schema and source
// failures ever reach here from the pipeline; cell-level problems degrade
// into missing values long before a handler sees them.
func apiError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "dataset session not found"})
	case errors.Is(err, pmr.ErrSchemaMismatch):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, pmr.ErrSourceUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
