package domain

import (
	"time"

	"github.com/google/uuid"
)

// Seller is the storefront profile of a SELLER user
type Seller struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"userId" db:"user_id"`
	Bio         string    `json:"bio" db:"bio"`
	Location    string    `json:"location" db:"location"`
	BankAccount string    `json:"bankAccount" db:"bank_account"`
	TaxID       string    `json:"taxId" db:"tax_id"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`

	// User is populated on profile reads only
	User *SellerUser `json:"user,omitempty"`
}

// SellerUser is the public slice of the owning user
type SellerUser struct {
	Email     string    `json:"email"`
	UserType  UserType  `json:"userType"`
	CreatedAt time.Time `json:"createdAt"`
}
