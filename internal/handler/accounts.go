package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"geoattend/internal/account"
	"geoattend/internal/auth"
	"geoattend/internal/face"
	"geoattend/internal/metrics"
)

type registerRequest struct {
	Email          string    `json:"email" form:"email" binding:"required,email"`
	Password       string    `json:"password" form:"password" binding:"required"`
	PhoneNumber    string    `json:"phoneNumber" form:"phoneNumber"`
	FaceDescriptor []float64 `json:"faceDescriptor"`
}

type loginRequest struct {
	Email          string    `json:"email" form:"email" binding:"required"`
	Password       string    `json:"password" form:"password" binding:"required"`
	FaceDescriptor []float64 `json:"face_descriptor"`
}

// RegisterUser creates a student account.
func (h *Handler) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := h.accounts.Register(c.Request.Context(), account.Registration{
		Email:          req.Email,
		Password:       req.Password,
		PhoneNumber:    req.PhoneNumber,
		FaceDescriptor: face.Descriptor(req.FaceDescriptor),
	})
	if err != nil {
		h.metrics.Registrations.WithLabelValues(metrics.ResultFailure).Inc()
		h.writeError(c, err, "Registration failed. Please try again.")
		return
	}
	h.metrics.Registrations.WithLabelValues(metrics.ResultSuccess).Inc()
	c.JSON(http.StatusCreated, gin.H{"message": "Registration successful", "user": u})
}

// LoginUser authenticates a student and starts a session.
func (h *Handler) LoginUser(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := h.accounts.AuthenticateUser(c.Request.Context(), account.Credentials{
		Email:          req.Email,
		Password:       req.Password,
		FaceDescriptor: face.Descriptor(req.FaceDescriptor),
	})
	if err != nil {
		h.metrics.Logins.WithLabelValues(string(auth.KindStudent), metrics.ResultFailure).Inc()
		h.writeError(c, err, "Internal Server Error")
		return
	}
	h.establish(c, auth.Principal{Kind: auth.KindStudent, ID: u.ID}, "user", u)
}

// LoginAdmin authenticates an administrator and starts a session.
func (h *Handler) LoginAdmin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a, err := h.accounts.AuthenticateAdmin(c.Request.Context(), account.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.metrics.Logins.WithLabelValues(string(auth.KindAdmin), metrics.ResultFailure).Inc()
		h.writeError(c, err, "Internal Server Error")
		return
	}
	h.establish(c, auth.Principal{Kind: auth.KindAdmin, ID: a.ID}, "admin", a)
}

func (h *Handler) establish(c *gin.Context, p auth.Principal, field string, payload any) {
	tok, err := h.sessions.Establish(c.Writer, c.Request, p)
	if err != nil {
		h.metrics.Logins.WithLabelValues(string(p.Kind), metrics.ResultFailure).Inc()
		h.writeError(c, err, "Internal Server Error")
		return
	}
	h.metrics.Logins.WithLabelValues(string(p.Kind), metrics.ResultSuccess).Inc()
	c.JSON(http.StatusOK, gin.H{
		"message":      "Login successful",
		field:          payload,
		"access_token": tok.AccessToken,
		"expires_at":   tok.ExpiresAt.Unix(),
	})
}

// Logout clears the session cookie.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.sessions.Clear(c.Writer, c.Request); err != nil {
		h.writeError(c, err, "Logout failed.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
