package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents the user entity in the database.
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	Username     string     `json:"username" db:"username"`
	Name         string     `json:"name" db:"name"`
	PasswordHash string     `json:"-" db:"password"`
	Role         UserRole   `json:"role" db:"role"`
	IsVerified   bool       `json:"is_verified" db:"is_verified"`
	VerifiedAt   *time.Time `json:"verified_at,omitempty" db:"verified_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"-" db:"updated_at"`
}

// UserRole defines the possible roles for a user.
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// UserResponse structures the user data returned by API endpoints.
// The password hash is never part of it.
type UserResponse struct {
	ID         uuid.UUID  `json:"id"`
	Email      string     `json:"email"`
	Username   string     `json:"username"`
	Name       string     `json:"name"`
	Role       UserRole   `json:"role"`
	IsVerified bool       `json:"is_verified"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ToResponse converts a User model to an API UserResponse.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Username:   u.Username,
		Name:       u.Name,
		Role:       u.Role,
		IsVerified: u.IsVerified,
		VerifiedAt: u.VerifiedAt,
		CreatedAt:  u.CreatedAt,
	}
}

// UpdateUserParams represents a partial update of a user row. Nil fields
// are left unchanged.
type UpdateUserParams struct {
	Name         *string
	Username     *string
	PasswordHash *string
	IsVerified   *bool
	VerifiedAt   *time.Time
}
