package domain

import "time"

// SessionTTL is the validity window of every token issued on login.
const SessionTTL = 6 * time.Hour

// Identity is the verified caller of a request.
type Identity struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// SessionClaims is the decoded content of a verified session token.
type SessionClaims struct {
	Identity
	TokenID   string    `json:"jti"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}
