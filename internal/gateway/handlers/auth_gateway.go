package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"annapurna-pos/config"
	"annapurna-pos/internal/utils"
)

type AuthHTTPHandler struct {
	auth config.AuthConfig
}

func NewAuthHTTPHandler(auth config.AuthConfig) *AuthHTTPHandler {
	return &AuthHTTPHandler{auth: auth}
}

type LoginRequest struct {
	Password string `json:"password" binding:"required"`
	Terminal string `json:"terminal,omitempty"`
}

// Login checks the shared password and issues a session token.
func (h *AuthHTTPHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("password required"))
		return
	}

	if req.Password != h.auth.SharedPassword {
		c.JSON(http.StatusUnauthorized, errorResponse("Incorrect password"))
		return
	}

	terminal := req.Terminal
	if terminal == "" {
		terminal = "counter"
	}

	ttl := time.Duration(h.auth.TokenTTLHours) * time.Hour
	token, exp, err := utils.GenerateToken(terminal, ttl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to issue token"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Login successful", gin.H{
		"token":      token,
		"expires_at": exp,
	}))
}
