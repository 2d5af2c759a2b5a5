package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const errResetStore = "failed to reset store"

// @Summary      Reset the measurement store
// @Description  Drops and recreates the fact table. All ingested data is lost; the next ETL cycle bootstraps from scratch.
// @Tags         admin
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/admin/reset [post]
// @Security     BearerAuth
func (h *Handler) resetStore(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.services.Admin.ResetStore(ctx); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errResetStore, "store_reset_failed", err)
		return
	}
	if h.log != nil {
		h.log.Infow("store_reset_done")
	}
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}
