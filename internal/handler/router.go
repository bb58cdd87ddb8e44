package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"geoattend/internal/auth"
	"geoattend/internal/httpmiddleware"
	"geoattend/internal/metrics"
)

// RouterConfig holds transport settings for Router.
type RouterConfig struct {
	AllowedOrigins []string
	TrustedProxies []string
	RequestLog     bool
}

// Router wires middleware and routes.
func (h *Handler) Router(cfg RouterConfig) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	r.Use(gin.Recovery())
	if cfg.RequestLog {
		r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
			SkipPaths: []string{"/healthz", "/metrics"},
		}))
	}
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.AllowedOrigins))
	}
	r.Use(httpmiddleware.SecurityHeaders())

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Backend running")
	})
	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/users/register", h.RegisterUser)
	r.POST("/users/login", h.LoginUser)
	r.POST("/admin/login", h.LoginAdmin)
	r.POST("/logout", h.Logout)

	admin := r.Group("/admin", auth.RequirePrincipal(h.sessions, auth.KindAdmin))
	admin.GET("/rooms", h.ListRooms)
	admin.POST("/select-room", h.SelectRoom)
	admin.GET("/dashboard", h.ListRooms)
	admin.POST("/dashboard", h.AddRoom)
	admin.GET("/attendance", h.ListAttendance)

	limit := httpmiddleware.RateLimit(h.limiter, rateLimitMessage, h.logger, func() {
		h.metrics.Submission(metrics.ResultRateLimited)
	})
	r.POST("/mark-attendance", limit, h.MarkAttendance)

	return r, nil
}

// Healthz reports dependency status.
func (h *Handler) Healthz(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{"status": "ok"}
	for name, check := range h.health {
		ok := check(c.Request.Context())
		body[name] = ok
		if !ok {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
	}
	c.JSON(status, body)
}
