package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"himachal-market/internal/domain"
	"himachal-market/internal/events"
	"himachal-market/internal/repository"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// publishTimeout bounds the post-commit event write
const publishTimeout = 5 * time.Second

// OrderService defines the interface for order placement
type OrderService interface {
	// PlaceOrder validates the cart, decrements stock and persists the order
	// with its lines in one transaction. Nothing is written on failure.
	PlaceOrder(ctx context.Context, userID uuid.UUID, items []domain.CartItem) (*domain.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
}

type orderService struct {
	transactor  repository.Transactor
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	publisher   events.Publisher
	logger      *zap.Logger
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(
	transactor repository.Transactor,
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	publisher events.Publisher,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		transactor:  transactor,
		userRepo:    userRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

func (s *orderService) PlaceOrder(ctx context.Context, userID uuid.UUID, items []domain.CartItem) (*domain.Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to check user: %w", err)
	}

	var order *domain.Order
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.placeOrderTx(ctx, userID, items)
		return err
	})
	if err != nil {
		if repository.IsTransactionConflict(err) {
			return nil, fmt.Errorf("%w: %w", ErrOrderConflict, err)
		}
		return nil, err
	}

	s.publishOrderPlaced(ctx, order)

	return order, nil
}

// placeOrderTx processes lines in submitted order. The first failing line
// aborts the order.
func (s *orderService) placeOrderTx(ctx context.Context, userID uuid.UUID, items []domain.CartItem) (*domain.Order, error) {
	order := &domain.Order{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    domain.OrderStatusCompleted,
		CreatedAt: time.Now().UTC(),
		Items:     make([]domain.OrderItem, 0, len(items)),
	}
	total := decimal.Zero

	for _, item := range items {
		product, err := s.productRepo.FindByIDForUpdate(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil, &ProductNotFoundError{ProductID: item.ProductID}
			}
			return nil, fmt.Errorf("failed to load product: %w", err)
		}

		if item.Quantity > product.Stock {
			return nil, &InsufficientStockError{
				ProductID: product.ID,
				Name:      product.Name,
				Remaining: product.Stock,
			}
		}

		// Decrement now so a repeated line for the same product sees the new stock
		if err := s.productRepo.DecrementStock(ctx, product.ID, item.Quantity); err != nil {
			if errors.Is(err, repository.ErrStockConflict) {
				return nil, &InsufficientStockError{
					ProductID: product.ID,
					Name:      product.Name,
					Remaining: product.Stock,
				}
			}
			return nil, fmt.Errorf("failed to decrement stock: %w", err)
		}

		line := domain.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  item.Quantity,
			Price:     product.Price,
		}
		total = total.Add(line.LineTotal())
		order.Items = append(order.Items, line)
	}

	order.TotalAmount = total

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	return order, nil
}

func (s *orderService) publishOrderPlaced(ctx context.Context, order *domain.Order) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.PublishOrderPlaced(ctx, chimiddleware.GetReqID(ctx), order); err != nil {
		s.logger.Warn("Failed to publish order event",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
}

// GetOrder retrieves an order with its lines
func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, repository.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}
