package bookings

import (
	"errors"
	"net/http"

	"festpass/internal/shared/middleware"
	"festpass/internal/shared/utils/response"
	"festpass/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// InitiateBooking handles POST /api/v1/bookings/initiate
// @Summary Reserve tickets and get the signed payment form
// @Tags bookings
// @Accept json
// @Produce json
// @Param request body InitiateBookingRequest true "Booking"
// @Success 201 {object} InitiateBookingResponse
// @Failure 400 {object} InitiateBookingError
// @Failure 409 {object} InitiateBookingError
// @Router /bookings/initiate [post]
func (c *Controller) InitiateBooking(ctx *gin.Context) {
	var req InitiateBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, InitiateBookingError{
			Success: false,
			Error:   err.Error(),
			Code:    "INVALID_REQUEST",
		})
		return
	}

	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, InitiateBookingError{Success: false, Error: "invalid eventId", Code: "INVALID_REQUEST"})
		return
	}

	var caller *uuid.UUID
	if id, ok := middleware.CurrentUserID(ctx); ok {
		caller = &id
	}

	result, err := c.service.InitiateBooking(ctx.Request.Context(), caller, eventID, BookingRequest{
		Buyer: BuyerDetails{
			Name:   req.User.Name,
			Email:  req.User.Email,
			Phone:  req.User.Phone,
			Age:    req.User.Age,
			Gender: req.User.Gender,
		},
		Quantity:      req.Quantity,
		BookingType:   req.BookingType,
		SelectedDates: req.SelectedDates,
	})
	if err != nil {
		status, body := initiateError(err)
		ctx.JSON(status, body)
		return
	}

	ctx.JSON(http.StatusCreated, InitiateBookingResponse{
		Success:          true,
		BookingReference: result.Reference,
		PayuParams:       result.Handoff,
	})
}

// initiateError maps a booking failure to its status code and wire body.
func initiateError(err error) (int, InitiateBookingError) {
	body := InitiateBookingError{Success: false, Error: err.Error(), Code: Code(err)}

	var outOfRange *DateOutOfRangeError
	var soldOut *SoldOutError

	switch {
	case errors.As(err, &soldOut):
		remaining := soldOut.Remaining
		body.Date = soldOut.Date.String()
		body.Remaining = &remaining
		return http.StatusConflict, body
	case errors.As(err, &outOfRange):
		body.Date = outOfRange.Date
		return http.StatusUnprocessableEntity, body
	case errors.Is(err, ErrEventNotFound):
		return http.StatusNotFound, body
	case errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrUnsupportedBookingType),
		errors.Is(err, ErrNoDatesSelected):
		return http.StatusBadRequest, body
	default:
		body.Error = "internal server error"
		return http.StatusInternalServerError, body
	}
}

// GetBooking handles GET /api/v1/bookings/:reference
func (c *Controller) GetBooking(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}
	actor := users.Actor{ID: userID, Role: users.Role(middleware.CurrentRole(ctx))}

	booking, err := c.service.GetBooking(ctx.Request.Context(), actor, ctx.Param("reference"))
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			response.Error(ctx, http.StatusNotFound, err.Error(), nil)
		case errors.Is(err, ErrForbidden):
			response.Error(ctx, http.StatusForbidden, err.Error(), nil)
		default:
			response.Error(ctx, http.StatusInternalServerError, "Failed to retrieve booking", nil)
		}
		return
	}

	response.Success(ctx, http.StatusOK, "Booking retrieved successfully", booking)
}

// GetUserTickets handles GET /api/v1/users/tickets
func (c *Controller) GetUserTickets(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	var query TicketListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	tickets, err := c.service.ListUserTickets(ctx.Request.Context(), userID, query)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to retrieve tickets", nil)
		return
	}

	response.Success(ctx, http.StatusOK, "Tickets retrieved successfully", tickets)
}
