package auth

import (
	"errors"
	"net/http"

	"festpass/internal/shared/middleware"
	"festpass/internal/shared/utils/response"
	"festpass/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Controller struct {
	service   Service
	validator *validator.Validate
	log       *logger.Logger
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
		log:       logger.GetDefault().WithComponent("auth"),
	}
}

// bind decodes and validates a JSON body, writing the error response itself.
func (c *Controller) bind(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return false
	}
	if err := c.validator.Struct(req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Validation failed", err.Error())
		return false
	}
	return true
}

// Register godoc
// @Summary Register an account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration"
// @Success 201 {object} response.StandardApiResponse
// @Failure 409 {object} response.StandardApiResponse
// @Router /auth/register [post]
func (c *Controller) Register(ctx *gin.Context) {
	var req RegisterRequest
	if !c.bind(ctx, &req) {
		return
	}

	resp, err := c.service.Register(ctx.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserAlreadyExists):
			response.Error(ctx, http.StatusConflict, "User with this email already exists", nil)
		default:
			response.Error(ctx, http.StatusInternalServerError, "Failed to register user", nil)
		}
		return
	}

	response.Success(ctx, http.StatusCreated, "User registered successfully", resp)
}

// Login godoc
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} response.StandardApiResponse
// @Failure 401 {object} response.StandardApiResponse
// @Router /auth/login [post]
func (c *Controller) Login(ctx *gin.Context) {
	var req LoginRequest
	if !c.bind(ctx, &req) {
		return
	}

	resp, err := c.service.Login(ctx.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			c.log.LogAuthFailure(ctx.Request.Context(), "invalid_credentials", ctx.ClientIP())
			response.Error(ctx, http.StatusUnauthorized, "Invalid email or password", nil)
		default:
			response.Error(ctx, http.StatusInternalServerError, "Failed to login", nil)
		}
		return
	}

	response.Success(ctx, http.StatusOK, "Login successful", resp)
}

func (c *Controller) RefreshToken(ctx *gin.Context) {
	var req RefreshTokenRequest
	if !c.bind(ctx, &req) {
		return
	}

	tokenPair, err := c.service.RefreshToken(ctx.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrTokenExpired):
			c.log.LogAuthFailure(ctx.Request.Context(), "invalid_refresh_token", ctx.ClientIP())
			response.Error(ctx, http.StatusUnauthorized, "Invalid or expired refresh token", nil)
		case errors.Is(err, ErrUserNotFound):
			response.Error(ctx, http.StatusUnauthorized, "User not found", nil)
		default:
			response.Error(ctx, http.StatusInternalServerError, "Failed to refresh token", nil)
		}
		return
	}

	response.Success(ctx, http.StatusOK, "Token refreshed successfully", tokenPair)
}

// Logout is stateless; clients discard their tokens.
func (c *Controller) Logout(ctx *gin.Context) {
	var req LogoutRequest
	_ = ctx.ShouldBindJSON(&req)

	response.Success(ctx, http.StatusOK, "Logged out successfully", nil)
}

func (c *Controller) ChangePassword(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	var req ChangePasswordRequest
	if !c.bind(ctx, &req) {
		return
	}

	err := c.service.ChangePassword(ctx.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			response.Error(ctx, http.StatusUnauthorized, "Current password is incorrect", nil)
		case errors.Is(err, ErrUserNotFound):
			response.Error(ctx, http.StatusNotFound, "User not found", nil)
		default:
			response.Error(ctx, http.StatusInternalServerError, "Failed to change password", nil)
		}
		return
	}

	response.Success(ctx, http.StatusOK, "Password changed successfully", nil)
}

// GetMe godoc
// @Summary Current user profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.StandardApiResponse
// @Router /auth/me [get]
func (c *Controller) GetMe(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	profile, err := c.service.GetProfile(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.Error(ctx, http.StatusNotFound, "User not found", nil)
			return
		}
		response.Error(ctx, http.StatusInternalServerError, "Failed to load user", nil)
		return
	}

	response.Success(ctx, http.StatusOK, "User data retrieved successfully", profile)
}
