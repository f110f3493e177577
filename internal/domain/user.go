package domain

import "time"

// User is the account record for people who own tasks. The username is the
// unique identifier carried in tokens; it never changes after registration.
type User struct {
	ID           string
	Name         string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
