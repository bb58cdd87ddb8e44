package room

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

var ErrRoomNotFound = errors.New("room not found")

// Room is a named bounding box students can be geofenced into.
type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MinLat    float64   `json:"minlat"`
	MaxLat    float64   `json:"maxlat"`
	MinLon    float64   `json:"minlon"`
	MaxLon    float64   `json:"maxlon"`
	Selected  bool      `json:"selected"`
	CreatedAt time.Time `json:"created_at"`
}

// Contains reports whether the point lies inside the box, edges included.
// NaN coordinates are never inside.
func (r Room) Contains(lat, lon float64) bool {
	return lat >= r.MinLat && lat <= r.MaxLat &&
		lon >= r.MinLon && lon <= r.MaxLon
}

var errNotFinite = errors.New("value is not a finite number")

// ParseCoordinate parses a decimal degree value. Blank input, NaN and
// infinities are rejected.
func ParseCoordinate(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, strconv.ErrSyntax
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}
