package transport

import (
	"errors"
	"net/http"

	"himachal-market/internal/domain"
	"himachal-market/internal/middleware"
	"himachal-market/internal/repository"
	"himachal-market/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateUserRequest represents the registration request payload
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	UserType string `json:"userType" validate:"required"`
}

// UserProfile is the public view of an account
type UserProfile struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	UserType string `json:"userType"`
}

// CreateUserResponse represents the registration response
type CreateUserResponse struct {
	Message string      `json:"message"`
	User    UserProfile `json:"user"`
}

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	userService service.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// RegisterRoutes registers all user routes
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/users", h.CreateUser)
	r.Get("/api/users/{id}", h.GetUser)
}

// CreateUser handles user registration
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Registration validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	user, err := h.userService.Register(r.Context(), req.Email, req.Password, req.UserType)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidUserType):
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, repository.ErrUserAlreadyExists):
			middleware.RespondWithError(w, http.StatusConflict, "User with this email already exists")
		default:
			middleware.RespondWithInternalError(w, r, h.logger, "Registration failed", err)
		}
		return
	}

	h.logger.Info("User registered successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("user_type", string(user.UserType)),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, CreateUserResponse{
		Message: "User created successfully",
		User:    newUserProfile(user),
	})
}

// GetUser returns the public profile of an account
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "user")
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		middleware.RespondWithInternalError(w, r, h.logger, "Failed to get user", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newUserProfile(user))
}

func newUserProfile(user *domain.User) UserProfile {
	return UserProfile{
		ID:       user.ID.String(),
		Email:    user.Email,
		UserType: string(user.UserType),
	}
}
