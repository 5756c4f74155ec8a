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

// OnboardSellerRequest represents the seller profile payload
type OnboardSellerRequest struct {
	UserID      string `json:"userId" validate:"required,uuid"`
	Bio         string `json:"bio" validate:"max=2000"`
	Location    string `json:"location" validate:"max=255"`
	BankAccount string `json:"bankAccount" validate:"max=64"`
	TaxID       string `json:"taxId" validate:"max=64"`
}

// OnboardSellerResponse represents the created seller profile
type OnboardSellerResponse struct {
	Message string         `json:"message"`
	Profile *domain.Seller `json:"profile"`
}

// SellerHandler handles HTTP requests for seller profiles
type SellerHandler struct {
	sellerService service.SellerService
	logger        *zap.Logger
}

// NewSellerHandler creates a new SellerHandler
func NewSellerHandler(sellerService service.SellerService, logger *zap.Logger) *SellerHandler {
	return &SellerHandler{
		sellerService: sellerService,
		logger:        logger,
	}
}

// RegisterRoutes registers all seller routes
func (h *SellerHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/sellers", func(r chi.Router) {
		r.Post("/onboard", h.Onboard)
		r.Get("/{id}", h.GetProfile)
	})
}

// Onboard creates the seller profile of a SELLER user
func (h *SellerHandler) Onboard(w http.ResponseWriter, r *http.Request) {
	var req OnboardSellerRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Seller onboarding validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	profile, err := h.sellerService.CreateSellerProfile(r.Context(), service.SellerProfileInput{
		UserID:      uuid.MustParse(req.UserID),
		Bio:         req.Bio,
		Location:    req.Location,
		BankAccount: req.BankAccount,
		TaxID:       req.TaxID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSellerUserNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "Seller user not found")
		case errors.Is(err, service.ErrSellerProfileExists):
			middleware.RespondWithError(w, http.StatusConflict, "Seller profile already exists for this user")
		default:
			middleware.RespondWithInternalError(w, r, h.logger, "Seller onboarding failed", err)
		}
		return
	}

	h.logger.Info("Seller profile created",
		zap.String("seller_id", profile.ID.String()),
		zap.String("user_id", profile.UserID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, OnboardSellerResponse{
		Message: "Seller profile created successfully",
		Profile: profile,
	})
}

// GetProfile returns a seller with its owner's public details
func (h *SellerHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "seller")
	if !ok {
		return
	}

	seller, err := h.sellerService.GetSellerProfile(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrSellerNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Seller not found")
			return
		}
		middleware.RespondWithInternalError(w, r, h.logger, "Failed to fetch seller profile", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, seller)
}
