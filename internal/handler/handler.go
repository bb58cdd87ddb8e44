package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"geoattend/internal/account"
	"geoattend/internal/apperr"
	"geoattend/internal/attendance"
	"geoattend/internal/auth"
	"geoattend/internal/httpmiddleware"
	"geoattend/internal/metrics"
	"geoattend/internal/room"
)

// RoomService manages rooms and the selected room.
type RoomService interface {
	AddRoom(ctx context.Context, in room.NewRoom) (room.Room, error)
	ListRooms(ctx context.Context) ([]room.Room, error)
	SelectRoom(ctx context.Context, id string) error
}

// AttendanceService accepts and lists attendance records.
type AttendanceService interface {
	Mark(ctx context.Context, sub attendance.Submission) (attendance.Record, error)
	List(ctx context.Context, f attendance.Filter) ([]attendance.Record, error)
}

// AccountService registers and authenticates accounts.
type AccountService interface {
	Register(ctx context.Context, reg account.Registration) (account.User, error)
	AuthenticateUser(ctx context.Context, cred account.Credentials) (account.User, error)
	AuthenticateAdmin(ctx context.Context, cred account.Credentials) (account.Admin, error)
}

// Sessions resolves, establishes and clears principals.
type Sessions interface {
	auth.PrincipalLookup
	Establish(w http.ResponseWriter, r *http.Request, p auth.Principal) (auth.Token, error)
	Clear(w http.ResponseWriter, r *http.Request) error
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) bool

// Deps are the collaborators of a Handler.
type Deps struct {
	Rooms      RoomService
	Attendance AttendanceService
	Accounts   AccountService
	Sessions   Sessions
	Limiter    httpmiddleware.Limiter
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
	Health     map[string]HealthCheck
}

// Handler serves the HTTP API.
type Handler struct {
	rooms      RoomService
	attendance AttendanceService
	accounts   AccountService
	sessions   Sessions
	limiter    httpmiddleware.Limiter
	metrics    *metrics.Metrics
	logger     *slog.Logger
	health     map[string]HealthCheck
}

// New creates a handler. Metrics default to a private registry.
func New(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := d.Metrics
	if m == nil {
		m = metrics.New(prometheus.NewRegistry())
	}
	return &Handler{
		rooms:      d.Rooms,
		attendance: d.Attendance,
		accounts:   d.Accounts,
		sessions:   d.Sessions,
		limiter:    d.Limiter,
		metrics:    m,
		logger:     logger,
		health:     d.Health,
	}
}

const rateLimitMessage = "You have already marked your attendance for this hour."

// clientMessages are the texts shown for domain errors.
var clientMessages = []struct {
	err error
	msg string
}{
	{attendance.ErrNoRoomSelected, "No room has been selected by the admin."},
	{attendance.ErrOutsideGeofence, "Failed to mark attendance. You are not in the selected room."},
	{room.ErrRoomNotFound, "Room not found."},
	{account.ErrDuplicateEmail, "Email already registered."},
	{account.ErrUserNotFound, "User not found."},
	{account.ErrInvalidCredentials, "Invalid credentials."},
	{account.ErrFaceMismatch, "Face recognition failed."},
}

// writeError maps domain errors to 400 responses. Anything else is logged
// and answered with a generic 500 carrying fallback.
func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	var verr *apperr.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
		return
	}
	for _, m := range clientMessages {
		if errors.Is(err, m.err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": m.msg})
			return
		}
	}
	h.logger.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "err", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}
