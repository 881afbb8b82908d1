package handlers

import (
	"context"
	"errors"
	"net/http"

	"agro-collector/services"

	"github.com/gin-gonic/gin"
)

type CollectorHandler struct {
	scheduler *services.Scheduler
}

func NewCollectorHandler(scheduler *services.Scheduler) *CollectorHandler {
	return &CollectorHandler{
		scheduler: scheduler,
	}
}

// RunCollector handles POST|GET /api/v1/collector/run
// Partial failures are reported inside the results; only a failed run is a 500.
func (h *CollectorHandler) RunCollector(c *gin.Context) {
	// the run finishes even if the caller disconnects
	ctx := context.WithoutCancel(c.Request.Context())

	record, err := h.scheduler.Trigger(ctx, services.TriggerHTTP)
	if err != nil {
		if errors.Is(err, services.ErrRunInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("X-Run-ID", record.ID)
	c.JSON(http.StatusOK, record.Report)
}

// Preflight answers OPTIONS probes that carry no CORS headers.
func (h *CollectorHandler) Preflight(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// ListRuns handles GET /api/v1/collector/runs
func (h *CollectorHandler) ListRuns(c *gin.Context) {
	runs := h.scheduler.Runs().List()
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"count":  len(runs),
		"runs":   runs,
	})
}

// LatestRun handles GET /api/v1/collector/runs/latest
func (h *CollectorHandler) LatestRun(c *gin.Context) {
	run, ok := h.scheduler.Runs().Latest()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no collector runs yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "run": run})
}

// GetRunStats handles GET /api/v1/collector/stats
func (h *CollectorHandler) GetRunStats(c *gin.Context) {
	stats := h.scheduler.Runs().GetCacheStats()
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"stats":  stats,
	})
}

// ClearRuns handles DELETE /api/v1/collector/runs
func (h *CollectorHandler) ClearRuns(c *gin.Context) {
	h.scheduler.Runs().ClearCache()
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
