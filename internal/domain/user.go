package domain

import (
	"errors"
	"strings"
	"time"
	_ "time/tzdata" // zone database for containers without one
)

// User represents an account holder.
type User struct {
	ID             string
	Email          string
	FirstName      string
	LastName       string
	Timezone       string
	HashedPassword string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FullName returns the first and last name joined by a space.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Location resolves the user's IANA timezone. Unknown or empty zones fall back to UTC.
func (u *User) Location() *time.Location {
	if u == nil || u.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Authentication errors
var (
	ErrUnauthorized = errors.New("not authorized")
	ErrTokenMissing = errors.New("token is missing")
	ErrTokenExpired = errors.New("token is expired")
	ErrTokenInvalid = errors.New("token is invalid")
)
