package account

import (
	"errors"
	"time"

	"geoattend/internal/face"
)

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrFaceMismatch       = errors.New("face recognition failed")
)

// User is a student account.
type User struct {
	ID             string          `json:"id"`
	Email          string          `json:"email"`
	PasswordHash   string          `json:"-"`
	PhoneNumber    *string         `json:"phone_number,omitempty"`
	FaceDescriptor face.Descriptor `json:"-"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Admin is an administrator account. Password holds whatever was
// provisioned, usually plaintext.
type Admin struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
