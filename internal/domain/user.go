package domain

import "time"

// User is the credential record the session core consults. Email is stored
// normalized (trimmed, lower-cased).
type User struct {
	ID           string
	Email        string
	PasswordHash string // argon2id PHC encoded
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
