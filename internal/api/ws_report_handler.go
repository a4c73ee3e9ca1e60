package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"pmr-generator/internal/report"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// GET /ws/reports/:job
// Streams export progress events until the job finishes. A client joining
// a finished job gets the terminal event immediately and the socket closes.
func WSReportProgressHandler(runner *report.Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		job, err := runner.Get(c.Param("job"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "report job not found"})
			return
		}

		conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Println("WebSocket upgrade failed:", err)
			return
		}
		defer conn.Close()

		events, cancel := job.Subscribe()
		defer cancel()

		for ev := range events {
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
			if ev.Stage == "done" || ev.Stage == "error" {
				return
			}
		}
	}
}
