package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"himachal-market/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrSellerNotFound      = errors.New("seller not found")
	ErrSellerAlreadyExists = errors.New("seller profile already exists for this user")
)

// SellerRepository defines the interface for seller profile data access
type SellerRepository interface {
	Create(ctx context.Context, seller *domain.Seller) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Seller, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Seller, error)
}

type sellerRepository struct {
	db *sql.DB
}

// NewSellerRepository creates a new instance of SellerRepository
func NewSellerRepository(db *sql.DB) SellerRepository {
	return &sellerRepository{db: db}
}

// Create inserts a seller profile. The unique user_id constraint backs the
// one-profile-per-user rule when two requests race.
func (r *sellerRepository) Create(ctx context.Context, seller *domain.Seller) error {
	query := `
		INSERT INTO sellers (id, user_id, bio, location, bank_account, tax_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := executor(ctx, r.db).ExecContext(
		ctx,
		query,
		seller.ID,
		seller.UserID,
		seller.Bio,
		seller.Location,
		seller.BankAccount,
		seller.TaxID,
		seller.CreatedAt,
		seller.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, "sellers_user_id_key") {
			return ErrSellerAlreadyExists
		}
		return fmt.Errorf("failed to create seller: %w", err)
	}

	return nil
}

// FindByID retrieves a seller profile joined with its owner's public details
func (r *sellerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Seller, error) {
	query := `
		SELECT s.id, s.user_id, COALESCE(s.bio, ''), COALESCE(s.location, ''),
		       COALESCE(s.bank_account, ''), COALESCE(s.tax_id, ''), s.created_at, s.updated_at,
		       u.email, u.user_type, u.created_at
		FROM sellers s
		JOIN users u ON u.id = s.user_id
		WHERE s.id = $1
	`

	seller := &domain.Seller{User: &domain.SellerUser{}}
	var userType string
	err := executor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&seller.ID,
		&seller.UserID,
		&seller.Bio,
		&seller.Location,
		&seller.BankAccount,
		&seller.TaxID,
		&seller.CreatedAt,
		&seller.UpdatedAt,
		&seller.User.Email,
		&userType,
		&seller.User.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSellerNotFound
		}
		return nil, fmt.Errorf("failed to find seller by ID: %w", err)
	}
	seller.User.UserType = domain.UserType(userType)

	return seller, nil
}

// FindByUserID retrieves the seller profile owned by a user
func (r *sellerRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Seller, error) {
	query := `
		SELECT id, user_id, COALESCE(bio, ''), COALESCE(location, ''),
		       COALESCE(bank_account, ''), COALESCE(tax_id, ''), created_at, updated_at
		FROM sellers
		WHERE user_id = $1
	`

	seller := &domain.Seller{}
	err := executor(ctx, r.db).QueryRowContext(ctx, query, userID).Scan(
		&seller.ID,
		&seller.UserID,
		&seller.Bio,
		&seller.Location,
		&seller.BankAccount,
		&seller.TaxID,
		&seller.CreatedAt,
		&seller.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSellerNotFound
		}
		return nil, fmt.Errorf("failed to find seller by user ID: %w", err)
	}

	return seller, nil
}
