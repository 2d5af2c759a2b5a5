package handlers

import (
	"errors"
	"net/http"

	"smarthome_dw/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK      = "ok"
	statusStarted = "started"
	statusStopped = "stopped"

	errRunCycle = "failed to run etl cycle"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Run one ETL cycle
// @Description  Fetches records newer than the last ingested timestamp, normalizes and loads them.
// @Tags         etl
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, inserted, message"
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/etl/run [post]
// @Security     BearerAuth
func (h *Handler) runETLCycle(c *gin.Context) {
	ctx := c.Request.Context()
	res, err := h.services.ETL.RunCycle(ctx)
	if err != nil {
		// the remote feed or the store failed; nothing was persisted
		h.logAndJSONError(c, http.StatusBadGateway, errRunCycle, "etl_cycle_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   statusOK,
		"inserted": res.Inserted,
		"message":  res.Message,
	})
}

// @Summary      Start the ETL scheduler
// @Tags         scheduler
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/v1/scheduler/start [post]
// @Security     BearerAuth
func (h *Handler) startScheduler(c *gin.Context) {
	if err := h.services.Scheduler.Start(); err != nil {
		if errors.Is(err, service.ErrSchedulerRunning) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to start scheduler", "scheduler_start_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusStarted, "scheduler": h.services.Scheduler.Status()})
}

// @Summary      Stop the ETL scheduler
// @Tags         scheduler
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/v1/scheduler/stop [post]
// @Security     BearerAuth
func (h *Handler) stopScheduler(c *gin.Context) {
	if err := h.services.Scheduler.Stop(); err != nil {
		if errors.Is(err, service.ErrSchedulerStopped) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to stop scheduler", "scheduler_stop_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusStopped, "scheduler": h.services.Scheduler.Status()})
}

// @Summary      Scheduler status
// @Tags         scheduler
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/scheduler/status [get]
// @Security     BearerAuth
func (h *Handler) schedulerStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"scheduler": h.services.Scheduler.Status()})
}
