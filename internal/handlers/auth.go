package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthRequest is shared by sign-up and sign-in.
type AuthRequest struct {
	Username string `json:"username" binding:"required" example:"operator"`
	Password string `json:"password" binding:"required" example:"secret1"`
}

// SignUpResponse identifies the created account.
type SignUpResponse struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

// @Summary      Create an account
// @Description  Registers a dashboard owner. Usernames are unique.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      AuthRequest  true  "Credentials"
// @Success      201   {object}  SignUpResponse
// @Failure      400   {object}  map[string]string  "error, field"
// @Failure      409   {object}  map[string]string
// @Router       /auth/sign-up [post]
func (h *Handler) signUp(c *gin.Context) {
	var req AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBody + ": " + err.Error()})
		return
	}

	id, err := h.services.SignUp(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondServiceError(c, "auth_sign_up_failed", err, "username", req.Username)
		return
	}

	c.JSON(http.StatusCreated, SignUpResponse{ID: id, Username: strings.TrimSpace(req.Username)})
}

// @Summary      Sign in
// @Description  Exchanges credentials for a bearer token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      AuthRequest  true  "Credentials"
// @Success      200   {object}  map[string]string  "token"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/sign-in [post]
func (h *Handler) signIn(c *gin.Context) {
	var req AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBody + ": " + err.Error()})
		return
	}

	token, err := h.services.GenerateToken(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondServiceError(c, "auth_sign_in_failed", err, "username", req.Username)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
