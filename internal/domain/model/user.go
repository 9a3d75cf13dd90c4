package model

import (
	"strings"
	"time"

	"cadi-backend/internal/domain"

	"github.com/google/uuid"
)

// User is an account holder. Profile and notification preferences are
// created together with the user and persisted in the same transaction.
type User struct {
	ID           string
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	IsStaff      bool
	IsActive     bool
	DateJoined   time.Time
	LastLoginAt  *time.Time
	Profile      UserProfile
}

// UserProfile holds role and personal data.
type UserProfile struct {
	UserID      string
	Role        Role
	PhoneNumber string
	Program     string
	Semester    *int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewUser(id, username, email string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &User{
		ID:         id,
		Username:   username,
		Email:      strings.TrimSpace(email),
		IsActive:   true,
		DateJoined: now,
		Profile: UserProfile{
			UserID:    id,
			Role:      RoleBeneficiary,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }

// IsAdmin covers both the ADMIN role and staff accounts.
func (u *User) IsAdmin() bool {
	if u == nil {
		return false
	}
	return u.IsStaff || u.Profile.Role == RoleAdmin
}

func (u *User) IsProfessor() bool { return u != nil && u.Profile.Role == RoleProfessor }

func (u *User) IsBeneficiary() bool { return u != nil && u.Profile.Role == RoleBeneficiary }

// FullName falls back to the username when no names are set.
func (u *User) FullName() string {
	n := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if n == "" {
		return u.Username
	}
	return n
}

func (u *User) Touch() {
	now := time.Now()
	u.LastLoginAt = &now
}

// SetRole changes the profile role.
func (u *User) SetRole(r Role) error {
	if !r.Valid() {
		return domain.ErrInvalidArgument
	}
	u.Profile.Role = r
	u.Profile.UpdatedAt = time.Now()
	return nil
}

// ValidateSemester enforces the 1..20 range when set.
func (p *UserProfile) ValidateSemester() error {
	if p.Semester == nil {
		return nil
	}
	if *p.Semester < 1 || *p.Semester > 20 {
		return NewValidationError("semester", "validation.semester_range")
	}
	return nil
}
