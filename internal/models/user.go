package models

import "time"

// UserDB represents a user record in the database
type UserDB struct {
	ID           int64     `json:"id" db:"id"`                     // Primary key, assigned on insert
	Username     string    `json:"username" db:"username"`         // Unique username
	Email        string    `json:"email" db:"email"`               // Unique email
	PasswordHash string    `json:"-" db:"password_hash"`           // Bcrypt hash, never serialized
	Active       bool      `json:"active" db:"active"`             // Account active flag
	CreatedDate  time.Time `json:"created_date" db:"created_date"` // Creation timestamp
}

// UserJSON is the public projection of a user record, excluding the
// password hash.
type UserJSON struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Active   bool   `json:"active"`
}

// ToJSON returns the public projection of the user.
func (u *UserDB) ToJSON() UserJSON {
	return UserJSON{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Active:   u.Active,
	}
}
