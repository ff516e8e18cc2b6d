package api

import (
	"errors"
	"net/http"
	"time"

	"salesdash/server/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionHandler issues and clears dashboard sessions
type SessionHandler struct {
	jwt    *auth.JWTManager
	logger *logrus.Logger
}

func NewSessionHandler(jwt *auth.JWTManager, logger *logrus.Logger) *SessionHandler {
	return &SessionHandler{jwt: jwt, logger: orDefaultLogger(logger)}
}

func (h *SessionHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.jwt.Authenticate(req.Username, req.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.WithField("username", req.Username).Warn("Rejected login")
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.jwt.GenerateToken(req.Username)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	ttl := h.jwt.Expiration()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookie, token, int(ttl.Seconds()), "/", "", c.Request.TLS != nil, true)
	c.JSON(http.StatusOK, LoginResponse{Token: token, ExpiresAt: time.Now().Add(ttl)})
}

func (h *SessionHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookie, "", -1, "/", "", c.Request.TLS != nil, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
