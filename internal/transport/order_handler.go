package transport

import (
	"errors"
	"net/http"

	"himachal-market/internal/domain"
	"himachal-market/internal/middleware"
	"himachal-market/internal/repository"
	"himachal-market/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartLine is one requested product and quantity
type CartLine struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

// PlaceOrderRequest represents the checkout payload
type PlaceOrderRequest struct {
	UserID string     `json:"userId" validate:"required,uuid"`
	Items  []CartLine `json:"items" validate:"required,min=1,dive"`
}

// PlaceOrderResponse is the receipt of a committed order
type PlaceOrderResponse struct {
	Message string        `json:"message"`
	Order   *domain.Order `json:"order"`
}

// OrderHandler handles HTTP requests for orders
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// RegisterRoutes registers all order routes. Checkout runs behind limit.
func (h *OrderHandler) RegisterRoutes(r chi.Router, limit func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.With(limit).Post("/", h.PlaceOrder)
		r.Get("/{id}", h.GetOrder)
	})
}

// PlaceOrder turns a cart into a committed order
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Order validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	items := make([]domain.CartItem, len(req.Items))
	for i, line := range req.Items {
		items[i] = domain.CartItem{
			ProductID: uuid.MustParse(line.ProductID),
			Quantity:  line.Quantity,
		}
	}

	order, err := h.orderService.PlaceOrder(r.Context(), uuid.MustParse(req.UserID), items)
	if err != nil {
		h.respondPlaceOrderError(w, r, err)
		return
	}

	h.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", order.UserID.String()),
		zap.Int("lines", len(order.Items)),
		zap.String("total", order.TotalAmount.StringFixed(2)),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, PlaceOrderResponse{
		Message: "Order placed",
		Order:   order,
	})
}

func (h *OrderHandler) respondPlaceOrderError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		stockErr    *service.InsufficientStockError
		notFoundErr *service.ProductNotFoundError
	)

	switch {
	case errors.As(err, &stockErr):
		h.logger.Info("Order rejected", zap.Error(err))
		middleware.RespondWithErrorDetails(w, http.StatusBadRequest, err.Error(), map[string]interface{}{
			"productId": stockErr.ProductID.String(),
			"remaining": stockErr.Remaining,
		})
	case errors.As(err, &notFoundErr):
		h.logger.Info("Order rejected", zap.Error(err))
		middleware.RespondWithErrorDetails(w, http.StatusBadRequest, err.Error(), map[string]interface{}{
			"productId": notFoundErr.ProductID.String(),
		})
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidQuantity):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrOrderConflict):
		h.logger.Warn("Order aborted by concurrent checkout", zap.Error(err))
		middleware.RespondWithError(w, http.StatusConflict, service.ErrOrderConflict.Error())
	default:
		middleware.RespondWithInternalError(w, r, h.logger, "Order transaction failed", err)
	}
}

// GetOrder re-displays an order receipt
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "order")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		middleware.RespondWithInternalError(w, r, h.logger, "Failed to fetch order", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}
