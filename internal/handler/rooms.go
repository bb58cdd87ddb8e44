package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"geoattend/internal/auth"
	"geoattend/internal/metrics"
	"geoattend/internal/room"
)

type addRoomRequest struct {
	Name   string    `json:"name" form:"name"`
	MinLat rawNumber `json:"minlat" form:"minlat"`
	MaxLat rawNumber `json:"maxlat" form:"maxlat"`
	MinLon rawNumber `json:"minlon" form:"minlon"`
	MaxLon rawNumber `json:"maxlon" form:"maxlon"`
}

type selectRoomRequest struct {
	RoomID string `json:"roomId" form:"roomId"`
}

// ListRooms returns every room.
func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.rooms.ListRooms(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "Failed to fetch rooms.")
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// AddRoom creates a room from the admin dashboard form.
func (h *Handler) AddRoom(c *gin.Context) {
	var req addRoomRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room request."})
		return
	}

	rm, err := h.rooms.AddRoom(c.Request.Context(), room.NewRoom{
		Name:   req.Name,
		MinLat: string(req.MinLat),
		MaxLat: string(req.MaxLat),
		MinLon: string(req.MinLon),
		MaxLon: string(req.MaxLon),
	})
	if err != nil {
		h.writeError(c, err, "Failed to add room. Please try again.")
		return
	}
	h.metrics.RoomsCreated.Inc()
	h.logger.Info("room added", "room_id", rm.ID, "admin_id", adminID(c))
	c.JSON(http.StatusOK, rm)
}

// SelectRoom makes one room the target of attendance submissions.
func (h *Handler) SelectRoom(c *gin.Context) {
	var req selectRoomRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.rooms.SelectRoom(c.Request.Context(), req.RoomID); err != nil {
		result := metrics.ResultError
		if errors.Is(err, room.ErrRoomNotFound) {
			result = metrics.ResultNotFound
		}
		h.metrics.RoomSelections.WithLabelValues(result).Inc()
		h.writeError(c, err, "Failed to select room. Please try again.")
		return
	}
	h.metrics.RoomSelections.WithLabelValues(metrics.ResultSuccess).Inc()
	h.logger.Info("room selected", "room_id", req.RoomID, "admin_id", adminID(c))
	c.JSON(http.StatusOK, gin.H{"message": "Room selected successfully"})
}

func adminID(c *gin.Context) string {
	if p, ok := auth.PrincipalFrom(c); ok {
		return p.ID
	}
	return ""
}
