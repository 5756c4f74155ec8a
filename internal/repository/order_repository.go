package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"himachal-market/internal/domain"

	"github.com/google/uuid"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	// Create inserts the order row and all of its lines
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create writes the order header followed by one multi-row insert for its
// lines. Callers wrap it in a transaction to keep both atomic.
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	exec := executor(ctx, r.db)

	_, err := exec.ExecContext(
		ctx,
		`INSERT INTO orders (id, user_id, total_amount, status, created_at) VALUES ($1, $2, $3, $4, $5)`,
		order.ID,
		order.UserID,
		order.TotalAmount,
		string(order.Status),
		order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	if len(order.Items) == 0 {
		return nil
	}

	const columnsPerItem = 6
	placeholders := make([]string, 0, len(order.Items))
	args := make([]interface{}, 0, len(order.Items)*columnsPerItem)

	for i, item := range order.Items {
		base := i * columnsPerItem
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6))
		args = append(args, item.ID, order.ID, item.ProductID, i, item.Quantity, item.Price)
	}

	query := `INSERT INTO order_items (id, order_id, product_id, position, quantity, price) VALUES ` +
		strings.Join(placeholders, ", ")

	if _, err := exec.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create order items: %w", err)
	}

	return nil
}

// FindByID retrieves an order with its lines in purchase order
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	exec := executor(ctx, r.db)

	order := &domain.Order{}
	var status string
	err := exec.QueryRowContext(
		ctx,
		`SELECT id, user_id, total_amount, status, created_at FROM orders WHERE id = $1`,
		id,
	).Scan(&order.ID, &order.UserID, &order.TotalAmount, &status, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}
	order.Status = domain.OrderStatus(status)

	rows, err := exec.QueryContext(
		ctx,
		`SELECT id, order_id, product_id, quantity, price FROM order_items WHERE order_id = $1 ORDER BY position`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	order.Items = []domain.OrderItem{}
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return order, nil
}
