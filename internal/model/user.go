// Package model defines domain entities for the application.
package model

import "time"

// User is an account allowed to manage the agenda.
// Password holds an Argon2id PHC string, or a legacy plain-text value that
// is upgraded on the next successful login.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the per-request view of an authenticated user.
type Session struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
