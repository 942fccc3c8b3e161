package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/trendwatch/trendwatch/app/config"
	"github.com/trendwatch/trendwatch/app/notify"
)

func NewHandler(runner RunnerInterface, config *config.Config) *Handler {
	return &Handler{
		runner:    runner,
		config:    config,
		startedAt: time.Now().UTC(),
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.startedAt).Round(time.Second).String(),
	}

	if last := h.runner.LastResult(); last != nil {
		health["last_run_at"] = last.StartedAt.Format(time.RFC3339)
		health["last_run_status"] = last.Status
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := h.runner.GetStats()

	enabledSources := 0
	for _, src := range h.config.Sources {
		if src.Enabled {
			enabledSources++
		}
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"run_count":   stats.RunCount,
		"last_run_at": stats.LastRunAt,
		"last_status": stats.Status,
		"mode":        stats.LastMode,
		"sources":     enabledSources,
		"groups":      len(h.config.Groups),
		"channels":    len(h.config.Channels),
	})
}

// GetLatestRun serves the most recent report together with its dispatch
// results.
func (h *Handler) GetLatestRun(c *gin.Context) {
	last := h.runner.LastResult()
	if last == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No run has completed yet"})
		return
	}

	c.JSON(http.StatusOK, last)
}

// APITriggerRun executes a pipeline run synchronously and returns its
// result.
func (h *Handler) APITriggerRun(c *gin.Context) {
	result := h.runner.Run(c.Request.Context())

	status := http.StatusOK
	if result.Status == notify.RunAllFailed {
		status = http.StatusBadGateway
	}

	c.JSON(status, result)
}
