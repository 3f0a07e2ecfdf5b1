package checkins

import (
	"errors"
	"net/http"

	"festpass/internal/shared/middleware"
	"festpass/internal/shared/utils/response"
	"festpass/internal/users"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CheckIn handles POST /api/v1/checkins
// @Summary Admit a ticket holder at the gate
// @Tags checkins
// @Accept json
// @Produce json
// @Param request body CheckInRequest true "Scanned code"
// @Success 201 {object} response.StandardApiResponse
// @Failure 404 {object} response.StandardApiResponse
// @Failure 409 {object} response.StandardApiResponse
// @Failure 422 {object} response.StandardApiResponse
// @Router /checkins [post]
func (c *Controller) CheckIn(ctx *gin.Context) {
	var req CheckInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	staffID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}
	actor := users.Actor{ID: staffID, Role: users.Role(middleware.CurrentRole(ctx))}

	result, err := c.service.CheckIn(ctx.Request.Context(), actor, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrTicketNotFound):
			response.Error(ctx, http.StatusNotFound, err.Error(), nil)
		case errors.Is(err, ErrTicketNotPaid), errors.Is(err, ErrAlreadyCheckedIn):
			response.Error(ctx, http.StatusConflict, err.Error(), nil)
		case errors.Is(err, ErrDateNotOnTicket):
			response.Error(ctx, http.StatusUnprocessableEntity, err.Error(), nil)
		default:
			response.Error(ctx, http.StatusInternalServerError, "Failed to check in ticket", nil)
		}
		return
	}

	response.Success(ctx, http.StatusCreated, "Ticket checked in", result)
}
