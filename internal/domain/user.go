package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserType distinguishes buyers from sellers
type UserType string

const (
	UserTypeBuyer  UserType = "BUYER"
	UserTypeSeller UserType = "SELLER"
	UserTypeAdmin  UserType = "ADMIN"
)

// ParseUserType normalises a user type, reporting whether it is known
func ParseUserType(s string) (UserType, bool) {
	t := UserType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case UserTypeBuyer, UserTypeSeller, UserTypeAdmin:
		return t, true
	}
	return "", false
}

// User represents a marketplace account
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	UserType     UserType  `json:"userType" db:"user_type"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
