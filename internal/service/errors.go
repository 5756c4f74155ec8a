package service

import (
	"errors"
	"fmt"

	"himachal-market/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrEmptyCart         = errors.New("order must contain at least one item")
	ErrInvalidQuantity   = errors.New("quantity must be a positive integer")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrOrderConflict     = errors.New("order conflicted with a concurrent checkout, please retry")

	ErrInvalidUserType     = errors.New("user type must be one of BUYER, SELLER, ADMIN")
	ErrSellerUserNotFound  = errors.New("seller user not found")
	ErrSellerProfileExists = errors.New("seller profile already exists for this user")
	ErrInvalidPrice        = errors.New("price must be greater than zero, below 10000000000 and have at most 2 decimal places")
	ErrInvalidStock        = errors.New("stock must be between 0 and 2147483647")
)

// ProductNotFoundError reports a cart line whose product does not exist
type ProductNotFoundError struct {
	ProductID uuid.UUID
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

func (e *ProductNotFoundError) Unwrap() error {
	return repository.ErrProductNotFound
}

// InsufficientStockError reports a cart line asking for more than is on hand
type InsufficientStockError struct {
	ProductID uuid.UUID
	Name      string
	Remaining int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for %s, only %d left", e.Name, e.Remaining)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
