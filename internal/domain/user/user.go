package user

import (
	"fmt"
	"strings"
	"time"
)

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// ValidateNew checks a username/password pair before it is stored.
func ValidateNew(username, password string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("username required")
	}
	if strings.ContainsAny(username, " \t\n") {
		return fmt.Errorf("username must not contain whitespace")
	}
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}
