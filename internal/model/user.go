// Package model defines the data structures used throughout the application.
package model

// User is an account that owns companies and meetings.
//
// PasswordHash holds the bcrypt hash, never the plaintext. The `json:"-"` tag
// keeps it out of every API response.
type User struct {
	ID           int64  `json:"userId"   db:"user_id"`
	Username     string `json:"username" db:"username"`
	PasswordHash string `json:"-"        db:"password_hash"`
}
