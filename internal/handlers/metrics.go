package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const errGetMetrics = "failed to load store metrics"

// @Summary      Store metrics
// @Description  Total/today row counts plus latest timestamp and readings.
// @Tags         metrics
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/metrics [get]
// @Security     BearerAuth
func (h *Handler) getMetrics(c *gin.Context) {
	ctx := c.Request.Context()
	m, err := h.services.Metrics.Snapshot(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetMetrics, "metrics_snapshot_failed", err)
		return
	}
	c.JSON(http.StatusOK, m)
}
