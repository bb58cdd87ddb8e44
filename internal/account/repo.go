package account

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"geoattend/internal/face"
)

const uniqueViolation = "23505"

// Repository persists users and admins in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser inserts a user, mapping a taken email to ErrDuplicateEmail.
func (r *Repository) CreateUser(ctx context.Context, u User) (User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	var descriptor *string
	if len(u.FaceDescriptor) > 0 {
		encoded := u.FaceDescriptor.String()
		descriptor = &encoded
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, password, phone_number, face_descriptor)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, u.ID, u.Email, u.PasswordHash, u.PhoneNumber, descriptor)
	if err := row.Scan(&u.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return User{}, ErrDuplicateEmail
		}
		return User{}, err
	}
	return u, nil
}

// UserByEmail returns nil when no user has the email.
func (r *Repository) UserByEmail(ctx context.Context, email string) (*User, error) {
	return r.user(ctx, `WHERE email = $1`, email)
}

// UserByID returns nil when the id is unknown.
func (r *Repository) UserByID(ctx context.Context, id string) (*User, error) {
	return r.user(ctx, `WHERE id = $1`, id)
}

func (r *Repository) user(ctx context.Context, where string, arg string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, password, phone_number, face_descriptor, created_at
		FROM users `+where, arg)
	var (
		u          User
		descriptor sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.PhoneNumber, &descriptor, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if descriptor.Valid && descriptor.String != "" {
		d, err := face.Parse(descriptor.String)
		if err != nil {
			return nil, err
		}
		u.FaceDescriptor = d
	}
	return &u, nil
}

// AdminByEmail returns nil when no admin has the email.
func (r *Repository) AdminByEmail(ctx context.Context, email string) (*Admin, error) {
	return r.admin(ctx, `WHERE email = $1`, email)
}

// AdminByID returns nil when the id is unknown.
func (r *Repository) AdminByID(ctx context.Context, id string) (*Admin, error) {
	return r.admin(ctx, `WHERE id = $1`, id)
}

func (r *Repository) admin(ctx context.Context, where string, arg string) (*Admin, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, email, password, created_at FROM admin `+where, arg)
	var a Admin
	if err := row.Scan(&a.ID, &a.Email, &a.Password, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// EnsureAdmin creates the admin or resets its password.
func (r *Repository) EnsureAdmin(ctx context.Context, email, password string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admin (id, email, password)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET password = EXCLUDED.password
	`, uuid.NewString(), email, password)
	return err
}
