package models

import "time"

// User is an account. Immutable after registration apart from moderator
// promotion, which is an operational action outside the API.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Moderator    bool      `json:"moderator"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
