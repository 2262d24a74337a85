package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ecoviewer/internal/models"
)

// @Summary      Mount a dashboard
// @Description  Mounts a dashboard from a handoff. Both {data, channelId, password} and {data: {data, channelId, password}} are accepted.
// @Tags         dashboards
// @Accept       json
// @Produce      json
// @Param        body  body      object  true  "Handoff"
// @Success      201   {object}  MountResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /api/v1/dashboards [post]
// @Security     BearerAuth
func (h *Handler) mountDashboard(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBody})
		return
	}
	handoff, err := models.NormalizeHandoff(raw)
	if err != nil {
		if h.log != nil {
			h.log.Infow("dashboard_bad_handoff", "err", err)
		}
		h.respondHandoffError(c, err)
		return
	}
	h.mount(c, handoff, false)
}

func (h *Handler) respondHandoffError(c *gin.Context, err error) {
	if errors.Is(err, models.ErrMissingChannelID) {
		h.respondServiceError(c, "dashboard_bad_handoff", err)
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBody + ": " + err.Error()})
}

// @Summary      List dashboards
// @Tags         dashboards
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, sessions"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/dashboards [get]
// @Security     BearerAuth
func (h *Handler) listDashboards(c *gin.Context) {
	sessions := h.services.Sessions(userID(c))
	c.JSON(http.StatusOK, gin.H{
		"count":    len(sessions),
		"sessions": sessions,
	})
}

// @Summary      Dashboard view
// @Description  Rendered readouts, battery badge, gauge, lamp and chart of a mounted dashboard.
// @Tags         dashboards
// @Produce      json
// @Param        id   path      string  true  "Session id"
// @Success      200  {object}  models.DashboardView
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/dashboards/{id} [get]
// @Security     BearerAuth
func (h *Handler) getDashboard(c *gin.Context) {
	view, err := h.services.View(userID(c), c.Param("id"))
	if err != nil {
		h.respondServiceError(c, "dashboard_view_failed", err, "session_id", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary      Dashboard state
// @Tags         dashboards
// @Produce      json
// @Param        id   path      string  true  "Session id"
// @Success      200  {object}  models.DashboardState
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/dashboards/{id}/state [get]
// @Security     BearerAuth
func (h *Handler) getDashboardState(c *gin.Context) {
	st, err := h.services.State(userID(c), c.Param("id"))
	if err != nil {
		h.respondServiceError(c, "dashboard_state_failed", err, "session_id", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Unmount a dashboard
// @Tags         dashboards
// @Produce      json
// @Param        id   path      string  true  "Session id"
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/dashboards/{id} [delete]
// @Security     BearerAuth
func (h *Handler) unmountDashboard(c *gin.Context) {
	id := c.Param("id")
	if err := h.services.Unmount(c.Request.Context(), userID(c), id); err != nil {
		h.respondServiceError(c, "dashboard_unmount_failed", err, "session_id", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "unmounted", "id": id})
}
