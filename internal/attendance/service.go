package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"geoattend/internal/apperr"
	"geoattend/internal/room"
)

var (
	ErrNoRoomSelected  = errors.New("no room selected")
	ErrOutsideGeofence = errors.New("outside the selected room")
)

// Record is one accepted attendance submission. Records are never updated.
type Record struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	RollNumber string    `json:"rollNumber"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	CreatedAt  time.Time `json:"created_at"`
}

// Submission is the raw student input. Name and roll number are free-text
// claims and are not checked against registered users.
type Submission struct {
	Name       string
	RollNumber string
	Latitude   string
	Longitude  string
}

// Filter narrows a ledger listing.
type Filter struct {
	RollNumber string
	Limit      int
	Offset     int
}

// Ledger is the append-only record store.
type Ledger interface {
	Insert(ctx context.Context, rec Record) (Record, error)
	List(ctx context.Context, f Filter) ([]Record, error)
}

// RoomLookup finds the currently selected room.
type RoomLookup interface {
	SelectedRoom(ctx context.Context) (*room.Room, error)
}

// Service accepts attendance submissions that fall inside the selected room.
type Service struct {
	rooms  RoomLookup
	ledger Ledger
}

// NewService creates a service.
func NewService(rooms RoomLookup, ledger Ledger) *Service {
	return &Service{rooms: rooms, ledger: ledger}
}

// Mark validates a submission against the selected room and appends a
// record when the coordinates are inside its bounding box.
func (s *Service) Mark(ctx context.Context, sub Submission) (Record, error) {
	selected, err := s.rooms.SelectedRoom(ctx)
	if err != nil {
		return Record{}, err
	}
	if selected == nil {
		return Record{}, ErrNoRoomSelected
	}

	name := strings.TrimSpace(sub.Name)
	roll := strings.TrimSpace(sub.RollNumber)
	if name == "" || roll == "" {
		return Record{}, apperr.Validation("name and rollNumber are required")
	}
	lat, err := room.ParseCoordinate(sub.Latitude)
	if err != nil {
		return Record{}, apperr.Validation("lat must be a number")
	}
	lon, err := room.ParseCoordinate(sub.Longitude)
	if err != nil {
		return Record{}, apperr.Validation("lon must be a number")
	}

	if !selected.Contains(lat, lon) {
		return Record{}, ErrOutsideGeofence
	}

	rec, err := s.ledger.Insert(ctx, Record{
		Name:       name,
		RollNumber: roll,
		Latitude:   lat,
		Longitude:  lon,
	})
	if err != nil {
		return Record{}, fmt.Errorf("insert attendance: %w", err)
	}
	return rec, nil
}

// List returns ledger entries, newest first.
func (s *Service) List(ctx context.Context, f Filter) ([]Record, error) {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	recs, err := s.ledger.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return recs, nil
}
