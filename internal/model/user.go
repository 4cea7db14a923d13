// Package model defines domain entities for the application.
package model

import "time"

// User represents a store customer or administrator.
type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name,omitempty"`
	HashedPassword string    `json:"-"` // Never serialize
	IsActive       bool      `json:"is_active"`
	IsAdmin        bool      `json:"is_admin"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CanLogin returns true if the user is allowed to authenticate.
func (u *User) CanLogin() bool {
	return u.IsActive
}

// AuthContext holds authenticated request context.
// This is injected into the request context by auth middleware.
type AuthContext struct {
	UserID   string
	Username string
	IsAdmin  bool
}
