package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"himachal-market/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
	// ErrStockConflict means a decrement would have driven stock negative
	ErrStockConflict = errors.New("insufficient stock for decrement")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	// FindByIDForUpdate reads a product and row-locks it until the
	// surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error
	List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `p.id, p.seller_id, p.name, COALESCE(p.description, ''), p.price, p.stock,
	p.category, p.images, p.attributes, p.created_at, p.updated_at`

// Create inserts a new product into the database using parameterized queries
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	images, attributes, err := encodeProductJSON(product)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO products (id, seller_id, name, description, price, stock, category, images, attributes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9::jsonb, $10, $11)
	`

	_, err = executor(ctx, r.db).ExecContext(
		ctx,
		query,
		product.ID,
		product.SellerID,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		product.Category,
		images,
		attributes,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update updates an existing product in the database using parameterized queries
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	images, attributes, err := encodeProductJSON(product)
	if err != nil {
		return err
	}

	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, stock = $5, category = $6,
		    images = $7::jsonb, attributes = $8::jsonb, updated_at = $9
		WHERE id = $1
	`

	result, err := executor(ctx, r.db).ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		product.Category,
		images,
		attributes,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	return expectOneRow(result, ErrProductNotFound)
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1`

	return r.findOne(ctx, query, id)
}

func (r *productRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1 FOR UPDATE`

	return r.findOne(ctx, query, id)
}

// DecrementStock subtracts quantity from stock. The stock guard in the WHERE
// clause makes the update a no-op instead of going negative.
func (r *productRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	query := `
		UPDATE products
		SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
	`

	result, err := executor(ctx, r.db).ExecContext(ctx, query, id, quantity)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	return expectOneRow(result, ErrStockConflict)
}

// List retrieves products matching the filter together with their seller summary
func (r *productRepository) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	conditions := []string{}
	args := []interface{}{}

	addArg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Category != "" {
		conditions = append(conditions, "p.category = "+addArg(filter.Category))
	}
	if filter.MinPrice != nil {
		conditions = append(conditions, "p.price >= "+addArg(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		conditions = append(conditions, "p.price <= "+addArg(*filter.MaxPrice))
	}
	if len(filter.Attributes) > 0 {
		// Containment of the whole map is the AND of every key/value pair
		encoded, err := json.Marshal(filter.Attributes)
		if err != nil {
			return nil, fmt.Errorf("failed to encode attribute filter: %w", err)
		}
		conditions = append(conditions, "p.attributes @> "+addArg(string(encoded))+"::jsonb")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s, COALESCE(s.location, ''), COALESCE(s.bio, '')
		FROM products p
		JOIN sellers s ON s.id = p.seller_id
		%s
		ORDER BY p.created_at DESC, p.id
	`, productColumns, whereClause)

	rows, err := executor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		seller := &domain.SellerSummary{}
		product, err := scanProduct(rows, &seller.Location, &seller.Bio)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		product.Seller = seller
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func (r *productRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*domain.Product, error) {
	product, err := scanProduct(executor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner, extra ...any) (*domain.Product, error) {
	product := &domain.Product{}
	var images, attributes []byte

	dest := []any{
		&product.ID,
		&product.SellerID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Stock,
		&product.Category,
		&images,
		&attributes,
		&product.CreatedAt,
		&product.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(images, &product.Images); err != nil {
		return nil, fmt.Errorf("failed to decode images: %w", err)
	}
	if err := json.Unmarshal(attributes, &product.Attributes); err != nil {
		return nil, fmt.Errorf("failed to decode attributes: %w", err)
	}

	return product, nil
}

func encodeProductJSON(product *domain.Product) (images, attributes string, err error) {
	imageList := product.Images
	if imageList == nil {
		imageList = []string{}
	}
	attrs := product.Attributes
	if attrs == nil {
		attrs = domain.Attributes{}
	}

	imagesJSON, err := json.Marshal(imageList)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode images: %w", err)
	}
	attributesJSON, err := json.Marshal(attrs)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode attributes: %w", err)
	}

	return string(imagesJSON), string(attributesJSON), nil
}

func expectOneRow(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return notFound
	}

	return nil
}
