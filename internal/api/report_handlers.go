package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pmr-generator/internal/config"
	"pmr-generator/internal/report"
	"pmr-generator/internal/session"
)

type createReportRequest struct {
	Layout      string `json:"layout"` // "portrait" or "landscape"; empty uses the config default
	SummaryOnly bool   `json:"summaryOnly"`
}

// POST /datasets/:id/reports
// Starts the blocking export batch on a worker goroutine; the current
// filter state and period are baked into the job so the document matches
// what the caller was looking at.
func CreateReportHandler(store *session.Store, cfg *config.Config, runner *report.Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, ds, sel, err := requestDataset(c, store)
		if err != nil {
			apiError(c, err)
			return
		}
		var req createReportRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
				return
			}
		}
		layout := req.Layout
		if layout == "" {
			layout = cfg.Report.Orientation
		}
		switch strings.ToLower(layout) {
		case "portrait", "landscape":
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid layout %q (want portrait or landscape)", req.Layout)})
			return
		}

		view, effective := ds.Apply(sel)
		opts := report.Options{
			Period:      ds.Period,
			Selection:   effective,
			SummaryOnly: req.SummaryOnly,
			Landscape:   strings.EqualFold(layout, "landscape"),
			Report:      cfg.Report,
		}
		job := runner.Start(view, opts)
		c.JSON(http.StatusAccepted, gin.H{
			"job":      job.ID,
			"filename": job.Filename,
			"state":    job.State(),
		})
	}
}

// GET /reports/:job
// Running jobs report their state; finished jobs deliver the PDF bytes.
func GetReportHandler(runner *report.Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		job, err := runner.Get(c.Param("job"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "report job not found"})
			return
		}
		data, jobErr, done := job.Result()
		if !done {
			c.JSON(http.StatusOK, gin.H{"job": job.ID, "state": job.State()})
			return
		}
		if jobErr != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"job": job.ID, "state": job.State(), "error": jobErr.Error()})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", job.Filename))
		c.Data(http.StatusOK, "application/pdf", data)
	}
}
