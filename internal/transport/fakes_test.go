package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"himachal-market/internal/domain"
	"himachal-market/internal/middleware"
	"himachal-market/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeUserService struct {
	register func(ctx context.Context, email, password, userType string) (*domain.User, error)
	get      func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

func (f *fakeUserService) Register(ctx context.Context, email, password, userType string) (*domain.User, error) {
	return f.register(ctx, email, password, userType)
}

func (f *fakeUserService) GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return f.get(ctx, userID)
}

type fakeSellerService struct {
	create func(ctx context.Context, input service.SellerProfileInput) (*domain.Seller, error)
	get    func(ctx context.Context, id uuid.UUID) (*domain.Seller, error)
}

func (f *fakeSellerService) CreateSellerProfile(ctx context.Context, input service.SellerProfileInput) (*domain.Seller, error) {
	return f.create(ctx, input)
}

func (f *fakeSellerService) GetSellerProfile(ctx context.Context, id uuid.UUID) (*domain.Seller, error) {
	return f.get(ctx, id)
}

type fakeProductService struct {
	create func(ctx context.Context, input service.ProductInput) (*domain.Product, error)
	get    func(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	list   func(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
}

func (f *fakeProductService) CreateProduct(ctx context.Context, input service.ProductInput) (*domain.Product, error) {
	return f.create(ctx, input)
}

func (f *fakeProductService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return f.get(ctx, id)
}

func (f *fakeProductService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	return f.list(ctx, filter)
}

type fakeOrderService struct {
	place func(ctx context.Context, userID uuid.UUID, items []domain.CartItem) (*domain.Order, error)
	get   func(ctx context.Context, id uuid.UUID) (*domain.Order, error)
}

func (f *fakeOrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, items []domain.CartItem) (*domain.Order, error) {
	return f.place(ctx, userID, items)
}

func (f *fakeOrderService) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return f.get(ctx, id)
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()

	var payload []byte
	switch b := body.(type) {
	case string:
		payload = []byte(b)
	default:
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorResponse {
	t.Helper()

	var response middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}
