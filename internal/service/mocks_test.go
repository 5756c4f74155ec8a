package service

import (
	"context"
	"sync"

	"himachal-market/internal/domain"
	"himachal-market/internal/repository"

	"github.com/google/uuid"
)

// memStore backs the in-memory repositories. mockTransactor snapshots it
// before a unit of work and restores it on error, so tests can observe
// rollback the same way they would against Postgres.
type memStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*domain.User
	sellers  map[uuid.UUID]*domain.Seller
	products map[uuid.UUID]*domain.Product
	orders   map[uuid.UUID]*domain.Order

	orderCreateErr error
	lockErr        error
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[uuid.UUID]*domain.User),
		sellers:  make(map[uuid.UUID]*domain.Seller),
		products: make(map[uuid.UUID]*domain.Product),
		orders:   make(map[uuid.UUID]*domain.Order),
	}
}

type storeSnapshot struct {
	products map[uuid.UUID]domain.Product
	orders   map[uuid.UUID]*domain.Order
}

func (s *memStore) snapshot() storeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := storeSnapshot{
		products: make(map[uuid.UUID]domain.Product, len(s.products)),
		orders:   make(map[uuid.UUID]*domain.Order, len(s.orders)),
	}
	for id, p := range s.products {
		snap.products[id] = *p
	}
	for id, o := range s.orders {
		snap.orders[id] = o
	}
	return snap
}

func (s *memStore) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = make(map[uuid.UUID]*domain.Product, len(snap.products))
	for id, p := range snap.products {
		p := p
		s.products[id] = &p
	}
	s.orders = snap.orders
}

func (s *memStore) addUser(userType domain.UserType) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := &domain.User{
		ID:       uuid.New(),
		Email:    uuid.NewString() + "@example.com",
		UserType: userType,
	}
	s.users[user.ID] = user
	return user
}

func (s *memStore) addProduct(name, price string, stock int) *domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	product := &domain.Product{
		ID:       uuid.New(),
		SellerID: uuid.New(),
		Name:     name,
		Price:    mustDecimal(price),
		Stock:    stock,
	}
	s.products[product.ID] = product
	return product
}

func (s *memStore) stockOf(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Stock
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

type mockTransactor struct {
	store *memStore
}

func (m *mockTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := m.store.snapshot()
	if err := fn(ctx); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

type mockUserRepository struct {
	store *memStore
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	for _, existing := range m.store.users {
		if existing.Email == user.Email {
			return repository.ErrUserAlreadyExists
		}
	}
	m.store.users[user.ID] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	for _, user := range m.store.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	user, exists := m.store.users[id]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

type mockSellerRepository struct {
	store *memStore
}

func (m *mockSellerRepository) Create(ctx context.Context, seller *domain.Seller) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	for _, existing := range m.store.sellers {
		if existing.UserID == seller.UserID {
			return repository.ErrSellerAlreadyExists
		}
	}
	m.store.sellers[seller.ID] = seller
	return nil
}

func (m *mockSellerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Seller, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	seller, exists := m.store.sellers[id]
	if !exists {
		return nil, repository.ErrSellerNotFound
	}
	return seller, nil
}

func (m *mockSellerRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Seller, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	for _, seller := range m.store.sellers {
		if seller.UserID == userID {
			return seller, nil
		}
	}
	return nil, repository.ErrSellerNotFound
}

type mockProductRepository struct {
	store *memStore
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	p := *product
	m.store.products[product.ID] = &p
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	if _, exists := m.store.products[product.ID]; !exists {
		return repository.ErrProductNotFound
	}
	p := *product
	m.store.products[product.ID] = &p
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	product, exists := m.store.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	p := *product
	return &p, nil
}

func (m *mockProductRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	if m.store.lockErr != nil {
		return nil, m.store.lockErr
	}
	return m.FindByID(ctx, id)
}

func (m *mockProductRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	product, exists := m.store.products[id]
	if !exists || product.Stock < quantity {
		return repository.ErrStockConflict
	}
	product.Stock -= quantity
	return nil
}

func (m *mockProductRepository) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	products := []*domain.Product{}
	for _, product := range m.store.products {
		if filter.Category != "" && product.Category != filter.Category {
			continue
		}
		p := *product
		products = append(products, &p)
	}
	return products, nil
}

type mockOrderRepository struct {
	store *memStore
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	if m.store.orderCreateErr != nil {
		return m.store.orderCreateErr
	}
	o := *order
	o.Items = append([]domain.OrderItem(nil), order.Items...)
	m.store.orders[order.ID] = &o
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	order, exists := m.store.orders[id]
	if !exists {
		return nil, repository.ErrOrderNotFound
	}
	o := *order
	o.Items = append([]domain.OrderItem(nil), order.Items...)
	return &o, nil
}

type mockPublisher struct {
	mu        sync.Mutex
	published []*domain.Order
	err       error
}

func (m *mockPublisher) PublishOrderPlaced(ctx context.Context, traceID string, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, order)
	return nil
}

func (m *mockPublisher) Close() error { return nil }
