package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const errLimitInvalid = "invalid 'limit'; use a positive integer"

// @Summary      Channel samples
// @Description  Samples of this channel recorded by the caller's dashboards, newest first. Other users' recordings are never returned.
// @Tags         samples
// @Produce      json
// @Param        id     path   string  true   "Channel id"
// @Param        limit  query  int     false  "Max rows (default 100, max 1000)"
// @Success      200    {object}  map[string]interface{}  "count, samples"
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/v1/channels/{id}/samples [get]
// @Security     BearerAuth
func (h *Handler) getChannelSamples(c *gin.Context) {
	limit := 0
	if qs := c.Query("limit"); qs != "" {
		v, err := strconv.Atoi(qs)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": errLimitInvalid})
			return
		}
		limit = v
	}

	channelID := c.Param("id")
	recs, err := h.services.Recent(c.Request.Context(), userID(c), channelID, limit)
	if err != nil {
		h.respondServiceError(c, "samples_list_failed", err, "channel_id", channelID)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(recs),
		"samples": recs,
	})
}
