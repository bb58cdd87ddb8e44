package account

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"geoattend/internal/apperr"
	"geoattend/internal/auth"
	"geoattend/internal/face"
)

// Store is the persistence the service needs.
type Store interface {
	CreateUser(ctx context.Context, u User) (User, error)
	UserByEmail(ctx context.Context, email string) (*User, error)
	UserByID(ctx context.Context, id string) (*User, error)
	AdminByEmail(ctx context.Context, email string) (*Admin, error)
	AdminByID(ctx context.Context, id string) (*Admin, error)
	EnsureAdmin(ctx context.Context, email, password string) error
}

// Registration is a student sign-up request.
type Registration struct {
	Email          string
	Password       string
	PhoneNumber    string
	FaceDescriptor face.Descriptor
}

// Credentials is a login attempt. FaceDescriptor is optional and only
// consulted for students.
type Credentials struct {
	Email          string
	Password       string
	FaceDescriptor face.Descriptor
}

// Service registers and authenticates accounts.
type Service struct {
	store      Store
	matcher    *face.Matcher
	bcryptCost int
}

// NewService creates a service. A nil matcher uses the default threshold.
func NewService(store Store, matcher *face.Matcher) *Service {
	if matcher == nil {
		matcher = face.NewMatcher(0)
	}
	return &Service{store: store, matcher: matcher, bcryptCost: bcrypt.DefaultCost}
}

// Register creates a student with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, reg Registration) (User, error) {
	email := strings.TrimSpace(reg.Email)
	if email == "" || reg.Password == "" {
		return User{}, apperr.Validation("email and password are required")
	}
	if len(reg.FaceDescriptor) > 0 {
		if err := reg.FaceDescriptor.Validate(); err != nil {
			return User{}, apperr.Validation("faceDescriptor: %v", err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return User{}, apperr.Validation("password is too long")
		}
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	u := User{
		Email:          email,
		PasswordHash:   string(hash),
		FaceDescriptor: reg.FaceDescriptor,
	}
	if phone := strings.TrimSpace(reg.PhoneNumber); phone != "" {
		u.PhoneNumber = &phone
	}

	created, err := s.store.CreateUser(ctx, u)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return User{}, err
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

// AuthenticateUser checks a student's password and, when a descriptor is
// supplied, that it matches the stored one.
func (s *Service) AuthenticateUser(ctx context.Context, cred Credentials) (User, error) {
	u, err := s.store.UserByEmail(ctx, strings.TrimSpace(cred.Email))
	if err != nil {
		return User{}, fmt.Errorf("lookup user: %w", err)
	}
	if u == nil {
		return User{}, ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(cred.Password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	if len(cred.FaceDescriptor) > 0 {
		if len(u.FaceDescriptor) == 0 {
			return User{}, ErrFaceMismatch
		}
		res, err := s.matcher.Match(u.FaceDescriptor, cred.FaceDescriptor)
		if err != nil || !res.Match {
			return User{}, ErrFaceMismatch
		}
	}
	return *u, nil
}

// AuthenticateAdmin checks an administrator's password. Stored passwords
// are compared verbatim unless they are bcrypt hashes.
func (s *Service) AuthenticateAdmin(ctx context.Context, cred Credentials) (Admin, error) {
	a, err := s.store.AdminByEmail(ctx, strings.TrimSpace(cred.Email))
	if err != nil {
		return Admin{}, fmt.Errorf("lookup admin: %w", err)
	}
	if a == nil || !adminPasswordMatches(a.Password, cred.Password) {
		return Admin{}, ErrInvalidCredentials
	}
	return *a, nil
}

// PrincipalExists reports whether the account a session or token names is
// still on record. Ids that are not UUIDs never match.
func (s *Service) PrincipalExists(ctx context.Context, p auth.Principal) (bool, error) {
	if _, err := uuid.Parse(p.ID); err != nil {
		return false, nil
	}
	switch p.Kind {
	case auth.KindStudent:
		u, err := s.store.UserByID(ctx, p.ID)
		return u != nil, err
	case auth.KindAdmin:
		a, err := s.store.AdminByID(ctx, p.ID)
		return a != nil, err
	}
	return false, nil
}

// EnsureAdmin provisions the bootstrap administrator.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return apperr.Validation("admin email and password are required")
	}
	return s.store.EnsureAdmin(ctx, email, password)
}

func adminPasswordMatches(stored, given string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}
