package room

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"geoattend/internal/apperr"
)

// Store is the persistence the service needs.
type Store interface {
	Insert(ctx context.Context, rm Room) (Room, error)
	List(ctx context.Context) ([]Room, error)
	Select(ctx context.Context, id string) error
	Selected(ctx context.Context) (*Room, error)
}

// NewRoom is the raw admin input for a room. Coordinates arrive as text.
type NewRoom struct {
	Name   string
	MinLat string
	MaxLat string
	MinLon string
	MaxLon string
}

// Service manages rooms and the single selected room.
type Service struct {
	store Store
}

// NewService creates a service backed by a store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// AddRoom validates and stores a room. The box is stored as given; ordering
// and coordinate ranges are not checked.
func (s *Service) AddRoom(ctx context.Context, in NewRoom) (Room, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || blank(in.MinLat) || blank(in.MaxLat) || blank(in.MinLon) || blank(in.MaxLon) {
		return Room{}, apperr.Validation("All fields are required")
	}

	rm := Room{Name: name}
	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"minlat", in.MinLat, &rm.MinLat},
		{"maxlat", in.MaxLat, &rm.MaxLat},
		{"minlon", in.MinLon, &rm.MinLon},
		{"maxlon", in.MaxLon, &rm.MaxLon},
	}
	for _, f := range fields {
		v, err := ParseCoordinate(f.raw)
		if err != nil {
			return Room{}, apperr.Validation("%s must be a number", f.name)
		}
		*f.dst = v
	}

	created, err := s.store.Insert(ctx, rm)
	if err != nil {
		return Room{}, fmt.Errorf("insert room: %w", err)
	}
	return created, nil
}

// ListRooms returns all rooms.
func (s *Service) ListRooms(ctx context.Context) ([]Room, error) {
	rooms, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// SelectRoom makes id the only selected room.
func (s *Service) SelectRoom(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperr.Validation("roomId is required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return ErrRoomNotFound
	}
	if err := s.store.Select(ctx, id); err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return err
		}
		return fmt.Errorf("select room: %w", err)
	}
	return nil
}

// SelectedRoom returns the selected room, or nil.
func (s *Service) SelectedRoom(ctx context.Context) (*Room, error) {
	rm, err := s.store.Selected(ctx)
	if err != nil {
		return nil, fmt.Errorf("selected room: %w", err)
	}
	return rm, nil
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
