package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	errAnalyzeWaste       = "failed to run waste analysis"
	errAnalyzeConsumption = "failed to run consumption analysis"
	errAnalyzeAll         = "failed to run analyses"
)

// @Summary      Waste analysis
// @Description  Scans today's rows for runs of on-with-nobody-present readings.
// @Tags         analyses
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, recommendations"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/analyses/waste [get]
// @Security     BearerAuth
func (h *Handler) analyzeWaste(c *gin.Context) {
	ctx := c.Request.Context()
	recs, err := h.services.Analyzer.AnalyzeWaste(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errAnalyzeWaste, "analysis_waste_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":           len(recs),
		"recommendations": recs,
	})
}

// @Summary      High-consumption analysis
// @Description  Flags threshold-crossing energy usage per the configured policy and reports the daily total.
// @Tags         analyses
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "policy, total_wh, count, recommendations"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/analyses/consumption [get]
// @Security     BearerAuth
func (h *Handler) analyzeConsumption(c *gin.Context) {
	ctx := c.Request.Context()
	report, err := h.services.Analyzer.AnalyzeHighConsumption(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errAnalyzeConsumption, "analysis_consumption_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"policy":          report.Policy,
		"total_wh":        report.TotalWh,
		"count":           len(report.Recommendations),
		"recommendations": report.Recommendations,
	})
}

// @Summary      Run all analyses
// @Tags         analyses
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, recommendations"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/analyses/all [get]
// @Security     BearerAuth
func (h *Handler) analyzeAll(c *gin.Context) {
	ctx := c.Request.Context()
	recs, err := h.services.Analyzer.RunAll(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errAnalyzeAll, "analysis_all_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":           len(recs),
		"recommendations": recs,
	})
}
