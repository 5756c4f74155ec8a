package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"himachal-market/internal/domain"
	"himachal-market/internal/repository"

	"github.com/google/uuid"
)

// SellerProfileInput carries the fields of a new seller profile
type SellerProfileInput struct {
	UserID      uuid.UUID
	Bio         string
	Location    string
	BankAccount string
	TaxID       string
}

// SellerService defines the interface for seller onboarding
type SellerService interface {
	CreateSellerProfile(ctx context.Context, input SellerProfileInput) (*domain.Seller, error)
	GetSellerProfile(ctx context.Context, id uuid.UUID) (*domain.Seller, error)
}

type sellerService struct {
	userRepo   repository.UserRepository
	sellerRepo repository.SellerRepository
}

// NewSellerService creates a new instance of SellerService
func NewSellerService(userRepo repository.UserRepository, sellerRepo repository.SellerRepository) SellerService {
	return &sellerService{
		userRepo:   userRepo,
		sellerRepo: sellerRepo,
	}
}

// CreateSellerProfile attaches a storefront profile to a SELLER user
func (s *sellerService) CreateSellerProfile(ctx context.Context, input SellerProfileInput) (*domain.Seller, error) {
	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrSellerUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user.UserType != domain.UserTypeSeller {
		return nil, ErrSellerUserNotFound
	}

	existing, err := s.sellerRepo.FindByUserID(ctx, input.UserID)
	if err != nil && !errors.Is(err, repository.ErrSellerNotFound) {
		return nil, fmt.Errorf("failed to check existing profile: %w", err)
	}
	if existing != nil {
		return nil, ErrSellerProfileExists
	}

	now := time.Now().UTC()
	seller := &domain.Seller{
		ID:          uuid.New(),
		UserID:      input.UserID,
		Bio:         input.Bio,
		Location:    input.Location,
		BankAccount: input.BankAccount,
		TaxID:       input.TaxID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.sellerRepo.Create(ctx, seller); err != nil {
		if errors.Is(err, repository.ErrSellerAlreadyExists) {
			return nil, ErrSellerProfileExists
		}
		return nil, fmt.Errorf("failed to create seller profile: %w", err)
	}

	return seller, nil
}

// GetSellerProfile returns a seller with its owner's public details
func (s *sellerService) GetSellerProfile(ctx context.Context, id uuid.UUID) (*domain.Seller, error) {
	seller, err := s.sellerRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSellerNotFound) {
			return nil, repository.ErrSellerNotFound
		}
		return nil, fmt.Errorf("failed to get seller profile: %w", err)
	}
	return seller, nil
}
