package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"himachal-market/internal/database"
	"himachal-market/internal/domain"
	"himachal-market/internal/events"
	"himachal-market/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	pgOnce      sync.Once
	pgContainer *postgres.PostgresContainer
	pgDB        *sql.DB
	pgErr       error
)

// postgresDB starts one container for the package the first time an
// integration test asks for it
func postgresDB(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	pgOnce.Do(func() {
		ctx := context.Background()
		container, err := postgres.Run(
			ctx,
			"postgres:15",
			postgres.WithDatabase("testdb"),
			postgres.WithUsername("user"),
			postgres.WithPassword("password"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		if err != nil {
			pgErr = err
			return
		}
		pgContainer = container

		connStr, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			pgErr = err
			return
		}

		pgDB, pgErr = sql.Open("pgx", connStr)
		if pgErr != nil {
			return
		}
		pgErr = database.RunMigrations(pgDB, "../../migrations", zap.NewNop())
	})
	require.NoError(t, pgErr)

	return pgDB
}

type pgFixture struct {
	db       *sql.DB
	service  OrderService
	products repository.ProductRepository
	buyer    *domain.User
	seller   *domain.Seller
}

func newPGFixture(t *testing.T) *pgFixture {
	t.Helper()
	db := postgresDB(t)
	ctx := context.Background()

	userRepo := repository.NewUserRepository(db)
	sellerRepo := repository.NewSellerRepository(db)
	productRepo := repository.NewProductRepository(db)

	users := NewUserService(userRepo)
	buyer, err := users.Register(ctx, uuid.NewString()+"@example.com", "password123", "BUYER")
	require.NoError(t, err)
	owner, err := users.Register(ctx, uuid.NewString()+"@example.com", "password123", "SELLER")
	require.NoError(t, err)

	seller, err := NewSellerService(userRepo, sellerRepo).CreateSellerProfile(ctx, SellerProfileInput{
		UserID:   owner.ID,
		Location: "Kinnaur",
	})
	require.NoError(t, err)

	return &pgFixture{
		db: db,
		service: NewOrderService(
			repository.NewTransactor(db),
			userRepo,
			productRepo,
			repository.NewOrderRepository(db),
			events.NopPublisher{},
			zap.NewNop(),
		),
		products: productRepo,
		buyer:    buyer,
		seller:   seller,
	}
}

func (f *pgFixture) product(t *testing.T, name, price string, stock int) *domain.Product {
	t.Helper()

	product, err := NewProductService(repository.NewSellerRepository(f.db), f.products).
		CreateProduct(context.Background(), ProductInput{
			SellerID: f.seller.ID,
			Name:     name,
			Price:    decimal.RequireFromString(price),
			Stock:    stock,
			Category: "Fruits",
		})
	require.NoError(t, err)
	return product
}

func (f *pgFixture) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	product, err := f.products.FindByID(context.Background(), id)
	require.NoError(t, err)
	return product.Stock
}

func (f *pgFixture) ordersOf(t *testing.T, userID uuid.UUID) int {
	t.Helper()
	var count int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&count))
	return count
}

func TestPlaceOrderPG_CommitsOrderAndStock(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	apples := f.product(t, "Apples", "4.25", 10)
	walnuts := f.product(t, "Walnuts", "12.10", 3)

	order, err := f.service.PlaceOrder(ctx, f.buyer.ID, []domain.CartItem{
		{ProductID: apples.ID, Quantity: 4},
		{ProductID: walnuts.ID, Quantity: 3},
	})
	require.NoError(t, err)

	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("53.30")), "total was %s", order.TotalAmount)
	assert.Equal(t, 6, f.stock(t, apples.ID))
	assert.Equal(t, 0, f.stock(t, walnuts.ID))

	stored, err := f.service.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalAmount.Equal(order.TotalAmount))
	require.Len(t, stored.Items, 2)
	assert.Equal(t, apples.ID, stored.Items[0].ProductID)
	assert.Equal(t, walnuts.ID, stored.Items[1].ProductID)
}

func TestPlaceOrderPG_FailureRollsBackEverything(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	apples := f.product(t, "Apples", "4.25", 10)
	walnuts := f.product(t, "Walnuts", "12.10", 1)

	_, err := f.service.PlaceOrder(ctx, f.buyer.ID, []domain.CartItem{
		{ProductID: apples.ID, Quantity: 5},
		{ProductID: walnuts.ID, Quantity: 2},
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = f.service.PlaceOrder(ctx, f.buyer.ID, []domain.CartItem{
		{ProductID: apples.ID, Quantity: 5},
		{ProductID: uuid.New(), Quantity: 1},
	})
	assert.ErrorIs(t, err, repository.ErrProductNotFound)

	assert.Equal(t, 10, f.stock(t, apples.ID))
	assert.Equal(t, 1, f.stock(t, walnuts.ID))
	assert.Zero(t, f.ordersOf(t, f.buyer.ID))
}

func TestPlaceOrderPG_RepeatedLinesShareStock(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	shawl := f.product(t, "Kinnauri Shawl", "2400.00", 5)

	_, err := f.service.PlaceOrder(ctx, f.buyer.ID, []domain.CartItem{
		{ProductID: shawl.ID, Quantity: 2},
		{ProductID: shawl.ID, Quantity: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, f.stock(t, shawl.ID))
}

func TestPlaceOrderPG_ConcurrentOrdersNeverOversell(t *testing.T) {
	f := newPGFixture(t)
	const quantity = 3
	product := f.product(t, "Rhododendron Squash", "150.00", quantity)

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, 2)
	)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.service.PlaceOrder(context.Background(), f.buyer.ID, []domain.CartItem{
				{ProductID: product.ID, Quantity: quantity},
			})
		}(i)
	}
	close(start)
	wg.Wait()

	succeeded, rejected := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrInsufficientStock):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 0, f.stock(t, product.ID))
	assert.Equal(t, 1, f.ordersOf(t, f.buyer.ID))
}

func TestPlaceOrderPG_PriceSnapshot(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	product := f.product(t, "Apricots", "90.00", 10)

	order, err := f.service.PlaceOrder(ctx, f.buyer.ID, []domain.CartItem{{ProductID: product.ID, Quantity: 2}})
	require.NoError(t, err)

	current, err := f.products.FindByID(ctx, product.ID)
	require.NoError(t, err)
	current.Price = decimal.RequireFromString("120.00")
	current.UpdatedAt = time.Now().UTC()
	require.NoError(t, f.products.Update(ctx, current))

	stored, err := f.service.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, stored.Items[0].Price.Equal(decimal.RequireFromString("90.00")))
	assert.True(t, stored.TotalAmount.Equal(decimal.RequireFromString("180.00")))
}

func TestPlaceOrderPG_DeadlockIsReportedAsConflict(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	apples := f.product(t, "Apples", "4.25", 10)
	walnuts := f.product(t, "Walnuts", "12.10", 10)

	// A competing checkout holds walnuts and will ask for apples next
	rival, err := f.db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer rival.Rollback()
	_, err = rival.ExecContext(ctx, `SELECT id FROM products WHERE id = $1 FOR UPDATE`, walnuts.ID)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := f.service.PlaceOrder(ctx, f.buyer.ID, []domain.CartItem{
			{ProductID: apples.ID, Quantity: 1},
			{ProductID: walnuts.ID, Quantity: 1},
		})
		done <- err
	}()

	require.Eventually(t, func() bool {
		var waiting int
		err := f.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM pg_stat_activity WHERE wait_event_type = 'Lock' AND datname = current_database()`,
		).Scan(&waiting)
		return err == nil && waiting == 1
	}, 10*time.Second, 20*time.Millisecond)

	// Closes the cycle; the checkout has waited longest, so Postgres aborts it
	_, err = rival.ExecContext(ctx, `SELECT id FROM products WHERE id = $1 FOR UPDATE`, apples.ID)
	require.NoError(t, err)

	err = <-done
	assert.ErrorIs(t, err, ErrOrderConflict)
	require.NoError(t, rival.Rollback())

	assert.Equal(t, 10, f.stock(t, apples.ID))
	assert.Equal(t, 10, f.stock(t, walnuts.ID))
	assert.Equal(t, 0, f.ordersOf(t, f.buyer.ID))
}
