package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role enumerates the closed set of account roles.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole converts a wire-level role string into a Role. Legacy values
// carrying a "ROLE_" prefix are accepted and normalized here; the prefix
// never survives past the boundary.
func ParseRole(s string) (Role, error) {
	normalized := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(s), "ROLE_"))
	switch Role(normalized) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// User is the domain model for registered accounts. Username and email are
// globally unique; PasswordHash must never be serialized outward.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
