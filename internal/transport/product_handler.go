package transport

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"himachal-market/internal/domain"
	"himachal-market/internal/middleware"
	"himachal-market/internal/repository"
	"himachal-market/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateProductRequest represents the product listing payload
type CreateProductRequest struct {
	SellerID    string            `json:"sellerId" validate:"required,uuid"`
	Name        string            `json:"name" validate:"required,max=255"`
	Description string            `json:"description"`
	Price       decimal.Decimal   `json:"price" validate:"gt=0"`
	Stock       int               `json:"stock" validate:"gte=0,lte=2147483647"`
	Category    string            `json:"category" validate:"required,max=100"`
	Images      []string          `json:"images" validate:"omitempty,dive,required"`
	Attributes  domain.Attributes `json:"attributes"`
}

// CreateProductResponse represents the created product
type CreateProductResponse struct {
	Message string          `json:"message"`
	Product *domain.Product `json:"product"`
}

// ProductListResponse wraps a catalog listing
type ProductListResponse struct {
	Products []*domain.Product `json:"products"`
}

// ProductHandler handles HTTP requests for the catalog
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Post("/", h.CreateProduct)
		r.Get("/", h.ListProducts)
		r.Get("/{id}", h.GetProduct)
	})
}

// CreateProduct lists a new product under a seller
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	product, err := h.productService.CreateProduct(r.Context(), service.ProductInput{
		SellerID:    uuid.MustParse(req.SellerID),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		Images:      req.Images,
		Attributes:  req.Attributes,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSellerNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "Seller not found")
		case errors.Is(err, service.ErrInvalidPrice), errors.Is(err, service.ErrInvalidStock):
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			middleware.RespondWithInternalError(w, r, h.logger, "Failed to create product", err)
		}
		return
	}

	h.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("seller_id", product.SellerID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, CreateProductResponse{
		Message: "Product created successfully",
		Product: product,
	})
}

// ListProducts filters the catalog by category, price range and attributes
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProductFilter(r.URL.Query())
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	products, err := h.productService.ListProducts(r.Context(), filter)
	if err != nil {
		middleware.RespondWithInternalError(w, r, h.logger, "Failed to list products", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{Products: products})
}

// GetProduct returns a single product
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "product")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		middleware.RespondWithInternalError(w, r, h.logger, "Failed to fetch product", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// parseProductFilter reads category, minPrice and maxPrice; every other
// query key is an attribute equality predicate
func parseProductFilter(query url.Values) (domain.ProductFilter, error) {
	filter := domain.ProductFilter{Category: query.Get("category")}

	for _, bound := range []struct {
		key  string
		dest **decimal.Decimal
	}{
		{"minPrice", &filter.MinPrice},
		{"maxPrice", &filter.MaxPrice},
	} {
		raw := query.Get(bound.key)
		if raw == "" {
			continue
		}
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, errors.New("invalid " + bound.key)
		}
		*bound.dest = &value
	}

	for key, values := range query {
		switch key {
		case "category", "minPrice", "maxPrice":
			continue
		}
		if len(values) == 0 {
			continue
		}
		if filter.Attributes == nil {
			filter.Attributes = domain.Attributes{}
		}
		filter.Attributes[key] = attributeValue(values[0])
	}

	return filter, nil
}

func attributeValue(raw string) any {
	switch strings.ToLower(raw) {
	case "true":
		return true
	case "false":
		return false
	}
	return raw
}
