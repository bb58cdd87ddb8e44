package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"geoattend/internal/apperr"
	"geoattend/internal/attendance"
	"geoattend/internal/metrics"
)

type markRequest struct {
	Name       string    `json:"name" form:"name"`
	RollNumber string    `json:"rollNumber" form:"rollNumber"`
	Lat        rawNumber `json:"lat" form:"lat"`
	Lon        rawNumber `json:"lon" form:"lon"`
}

// MarkAttendance records a submission made from inside the selected room.
func (h *Handler) MarkAttendance(c *gin.Context) {
	var req markRequest
	if err := c.ShouldBind(&req); err != nil {
		h.metrics.Submission(metrics.ResultInvalid)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid attendance request."})
		return
	}

	rec, err := h.attendance.Mark(c.Request.Context(), attendance.Submission{
		Name:       req.Name,
		RollNumber: req.RollNumber,
		Latitude:   string(req.Lat),
		Longitude:  string(req.Lon),
	})
	if err != nil {
		h.metrics.Submission(submissionResult(err))
		h.writeError(c, err, "Failed to mark attendance. Please try again.")
		return
	}
	h.metrics.Submission(metrics.ResultAccepted)
	c.JSON(http.StatusOK, gin.H{
		"message": "Attendance marked successfully for " + rec.Name,
		"record":  rec,
	})
}

func submissionResult(err error) string {
	switch {
	case errors.Is(err, attendance.ErrOutsideGeofence):
		return metrics.ResultOutside
	case errors.Is(err, attendance.ErrNoRoomSelected):
		return metrics.ResultNoRoom
	case apperr.IsValidation(err):
		return metrics.ResultInvalid
	default:
		return metrics.ResultError
	}
}

// ListAttendance returns ledger entries for administrators.
func (h *Handler) ListAttendance(c *gin.Context) {
	f := attendance.Filter{RollNumber: c.Query("rollNumber")}
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			f.Limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			f.Offset = parsed
		}
	}
	recs, err := h.attendance.List(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, err, "Failed to fetch attendance.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": recs})
}
