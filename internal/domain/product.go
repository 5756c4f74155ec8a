package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	SellerID    uuid.UUID       `json:"sellerId" db:"seller_id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Stock       int             `json:"stock" db:"stock"`
	Category    string          `json:"category" db:"category"`
	Images      []string        `json:"images" db:"images"`
	Attributes  Attributes      `json:"attributes" db:"attributes"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`

	// Seller is populated by catalog listings
	Seller *SellerSummary `json:"seller,omitempty"`
}

// Attributes holds free-form, category specific product properties
type Attributes map[string]any

// SellerSummary is what buyers see about a seller next to a product
type SellerSummary struct {
	Location string `json:"location"`
	Bio      string `json:"bio"`
}

// ProductFilter narrows a catalog listing. Zero values are ignored and
// attribute predicates are combined with AND.
type ProductFilter struct {
	Category   string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Attributes Attributes
}
