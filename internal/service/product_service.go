package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"himachal-market/internal/domain"
	"himachal-market/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Prices are stored as DECIMAL(12,2)
const priceScale = 2

var maxPrice = decimal.New(1, 12-priceScale)

// ProductInput carries the fields of a new catalog entry
type ProductInput struct {
	SellerID    uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    string
	Images      []string
	Attributes  domain.Attributes
}

// ProductService defines the interface for the catalog
type ProductService interface {
	CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
}

type productService struct {
	sellerRepo  repository.SellerRepository
	productRepo repository.ProductRepository
}

// NewProductService creates a new instance of ProductService
func NewProductService(sellerRepo repository.SellerRepository, productRepo repository.ProductRepository) ProductService {
	return &productService{
		sellerRepo:  sellerRepo,
		productRepo: productRepo,
	}
}

// CreateProduct lists a new product under an existing seller
func (s *productService) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if !validPrice(input.Price) {
		return nil, ErrInvalidPrice
	}
	if input.Stock < 0 || input.Stock > math.MaxInt32 {
		return nil, ErrInvalidStock
	}

	if _, err := s.sellerRepo.FindByID(ctx, input.SellerID); err != nil {
		if errors.Is(err, repository.ErrSellerNotFound) {
			return nil, repository.ErrSellerNotFound
		}
		return nil, fmt.Errorf("failed to find seller: %w", err)
	}

	images := input.Images
	if images == nil {
		images = []string{}
	}
	attributes := input.Attributes
	if attributes == nil {
		attributes = domain.Attributes{}
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:          uuid.New(),
		SellerID:    input.SellerID,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		Category:    input.Category,
		Images:      images,
		Attributes:  attributes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// validPrice accepts what the price column stores exactly, so the listed price
// is the one later order lines snapshot
func validPrice(price decimal.Decimal) bool {
	return price.IsPositive() &&
		price.LessThan(maxPrice) &&
		price.Equal(price.Truncate(priceScale))
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, repository.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}
