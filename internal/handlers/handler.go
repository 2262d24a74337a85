package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"ecoviewer/internal/logger"
	"ecoviewer/internal/models"
	"ecoviewer/internal/service"
)

const (
	appTitle = "EcoViewer"
	statusOK = "ok"

	errInternal     = "internal error"
	errInvalidBody  = "invalid request body"
	errSessionGone  = "dashboard session not found"
	errSessionLimit = "too many dashboard sessions"
	errUsernameUsed = "username already taken"
	errBadLogin     = "invalid credentials"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	// browsers cannot set headers on a websocket handshake, so the token may come in the query
	router.GET("/ws/dashboards/:id", h.wsUserIdMiddleware, h.wsDashboard)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		api.POST("/connect", h.connect)
		h.registerDashboardRoutes(api)
		api.GET("/logs", h.getLogs)
		api.GET("/channels/:id/samples", h.getChannelSamples)
	}
}

func (h *Handler) registerDashboardRoutes(api *gin.RouterGroup) {
	dashboards := api.Group("/dashboards")
	{
		dashboards.POST("", h.mountDashboard)
		dashboards.GET("", h.listDashboards)
		dashboards.GET("/:id", h.getDashboard)
		dashboards.GET("/:id/state", h.getDashboardState)
		dashboards.DELETE("/:id", h.unmountDashboard)
	}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
		"app":    appTitle,
	})
}

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...any) {
	if h.log != nil && err != nil {
		fields := append([]any{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// respondServiceError maps service errors onto status codes. Anything unknown is a 500.
func (h *Handler) respondServiceError(c *gin.Context, logKey string, err error, kv ...any) {
	var (
		verr *service.ValidationError
		cerr *service.ConnectivityError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
	case errors.Is(err, models.ErrMissingChannelID):
		c.JSON(http.StatusBadRequest, gin.H{"error": service.MsgChannelIDRequired, "field": "channel_id"})
	case errors.As(err, &cerr):
		if h.log != nil {
			h.log.Infow(logKey, append([]any{"err", err, "status", cerr.Status}, kv...)...)
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": cerr.Message})
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errSessionGone})
	case errors.Is(err, service.ErrTooManySessions):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": errSessionLimit})
	case errors.Is(err, service.ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": errUsernameUsed, "field": "username"})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		if h.log != nil {
			h.log.Infow(logKey, append([]any{"err", err}, kv...)...)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": errBadLogin})
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, logKey, err, kv...)
	}
}
