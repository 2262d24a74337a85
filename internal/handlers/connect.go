package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ecoviewer/internal/models"
	"ecoviewer/internal/service"
)

// ConnectRequest is the connection form.
type ConnectRequest struct {
	ChannelID string `json:"channel_id" example:"12397"`
	// Public or Private; empty means Public
	ConnectionType string `json:"connection_type" example:"Private"`
	// Read API key, required when connection_type is Private
	AccessKey string `json:"access_key,omitempty" example:"XXXXXXXXXXXXXXXX"`
}

// MountResponse is returned whenever a dashboard is mounted.
type MountResponse struct {
	Session service.SessionInfo  `json:"session"`
	Handoff *models.Handoff      `json:"handoff,omitempty"`
	View    models.DashboardView `json:"view"`
}

// @Summary      Connect to a channel
// @Description  Validates the channel against the feed API and mounts a dashboard seeded with the fetched feed.
// @Tags         connect
// @Accept       json
// @Produce      json
// @Param        body  body      ConnectRequest  true  "Connection form"
// @Success      201   {object}  MountResponse
// @Failure      400   {object}  map[string]string  "error, field"
// @Failure      401   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/connect [post]
// @Security     BearerAuth
func (h *Handler) connect(c *gin.Context) {
	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBody + ": " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	handoff, err := h.services.Submit(ctx, userID(c), service.SubmitParams{
		ChannelID:      req.ChannelID,
		ConnectionType: req.ConnectionType,
		AccessKey:      req.AccessKey,
	})
	if err != nil {
		h.respondServiceError(c, "connect_failed", err, "channel_id", req.ChannelID)
		return
	}

	h.mount(c, handoff, true)
}

// mount mounts a dashboard for handoff and writes the 201 response.
func (h *Handler) mount(c *gin.Context, handoff models.Handoff, echoHandoff bool) {
	uid := userID(c)
	info, err := h.services.Mount(c.Request.Context(), uid, handoff)
	if err != nil {
		h.respondServiceError(c, "dashboard_mount_failed", err, "channel_id", handoff.Credentials.ChannelID)
		return
	}

	view, err := h.services.View(uid, info.ID)
	if err != nil {
		h.respondServiceError(c, "dashboard_view_failed", err, "session_id", info.ID)
		return
	}

	resp := MountResponse{Session: info, View: view}
	if echoHandoff {
		resp.Handoff = &handoff
	}
	c.JSON(http.StatusCreated, resp)
}
