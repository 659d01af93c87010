package domain

import (
	"strings"
	"time"
)

// User models a registered account. PasswordHash never leaves the service.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// PublicUser is the outbound view of a User.
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Public strips everything that must not be serialized.
func (u *User) Public() *PublicUser {
	return &PublicUser{ID: u.ID, Email: u.Email, Name: u.Name}
}

// Identity returns the claims a session token carries for this user.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, Name: u.Name}
}

// NormalizeEmail lowercases and trims an email address before lookup or storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
