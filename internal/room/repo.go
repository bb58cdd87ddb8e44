package room

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// selectionLockKey serializes room selections across connections.
const selectionLockKey int64 = 0x726f6f6d

// Repository persists rooms in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert stores a new, unselected room.
func (r *Repository) Insert(ctx context.Context, rm Room) (Room, error) {
	if rm.ID == "" {
		rm.ID = uuid.NewString()
	}
	rm.Selected = false
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO room (id, name, minlat, maxlat, minlon, maxlon, selected)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE)
		RETURNING created_at
	`, rm.ID, rm.Name, rm.MinLat, rm.MaxLat, rm.MinLon, rm.MaxLon)
	if err := row.Scan(&rm.CreatedAt); err != nil {
		return Room{}, err
	}
	return rm, nil
}

// List returns every room.
func (r *Repository) List(ctx context.Context) ([]Room, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, minlat, maxlat, minlon, maxlon, selected, created_at
		FROM room
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rooms := []Room{}
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, rm)
	}
	return rooms, rows.Err()
}

// Selected returns the selected room, or nil when none is selected.
func (r *Repository) Selected(ctx context.Context) (*Room, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, minlat, maxlat, minlon, maxlon, selected, created_at
		FROM room
		WHERE selected
		LIMIT 1
	`)
	rm, err := scanRoom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rm, nil
}

// Select makes id the only selected room. The previous selection is kept
// when id does not exist.
func (r *Repository) Select(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, selectionLockKey); err != nil {
		return fmt.Errorf("lock selection: %w", err)
	}

	var exists bool
	if err = tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM room WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		err = ErrRoomNotFound
		return err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE room SET selected = FALSE WHERE selected AND id <> $1`, id); err != nil {
		return fmt.Errorf("clear selection: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `UPDATE room SET selected = TRUE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("set selection: %w", err)
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRoom(s scanner) (Room, error) {
	var rm Room
	err := s.Scan(&rm.ID, &rm.Name, &rm.MinLat, &rm.MaxLat, &rm.MinLon, &rm.MaxLon, &rm.Selected, &rm.CreatedAt)
	return rm, err
}
