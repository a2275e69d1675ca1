package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Index sends known users to their dashboard and everyone else to login.
func (h *Handler) Index(c *gin.Context) {
	if _, ok := getUserID(c); ok {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := bind(c, &req); err != nil {
		respondError(c, err)
		return
	}

	user, err := h.Auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":     user,
		"message":  "Registration successful. Please login.",
		"redirect": "/login",
	})
}

// Login starts a cookie session and also returns a bearer token for API and
// websocket clients.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := bind(c, &req); err != nil {
		respondError(c, err)
		return
	}

	user, err := h.Auth.Login(c.Request.Context(), req.login(), req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.Sessions.Login(c, user.ID); err != nil {
		respondError(c, err)
		return
	}
	token, err := h.Tokens.Generate(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":     user,
		"token":    token,
		"redirect": "/dashboard",
	})
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.Sessions.Logout(c); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out", "redirect": "/login"})
}
