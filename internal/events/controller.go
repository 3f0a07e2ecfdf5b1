package events

import (
	"errors"
	"net/http"

	"festpass/internal/shared/middleware"
	"festpass/internal/shared/utils/response"
	"festpass/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	CreateEvent(c *gin.Context)
	GetEvent(c *gin.Context)
	UpdateEvent(c *gin.Context)
	DeleteEvent(c *gin.Context)
	GetAllEvents(c *gin.Context)
	GetAvailability(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// CreateEvent godoc
// @Summary Create an event
// @Tags events
// @Accept json
// @Produce json
// @Param request body CreateEventRequest true "Event"
// @Success 201 {object} response.StandardApiResponse
// @Router /admin/events [post]
func (ctrl *controller) CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	event, err := ctrl.service.CreateEvent(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Event created successfully", event)
}

// GetEvent godoc
// @Summary Get an event by id or slug
// @Tags events
// @Produce json
// @Param id path string true "Event id or slug"
// @Success 200 {object} response.StandardApiResponse
// @Router /events/{id} [get]
func (ctrl *controller) GetEvent(c *gin.Context) {
	event, err := ctrl.service.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Event retrieved successfully", event)
}

func (ctrl *controller) UpdateEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid event ID", err.Error())
		return
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	event, err := ctrl.service.UpdateEvent(c.Request.Context(), actor, eventID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Event updated successfully", event)
}

func (ctrl *controller) DeleteEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid event ID", err.Error())
		return
	}

	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	if err := ctrl.service.DeleteEvent(c.Request.Context(), actor, eventID); err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Event deleted successfully", nil)
}

// GetAllEvents godoc
// @Summary List events
// @Tags events
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Param search query string false "Search"
// @Success 200 {object} response.StandardApiResponse
// @Router /events [get]
func (ctrl *controller) GetAllEvents(c *gin.Context) {
	var query EventListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	events, err := ctrl.service.ListEvents(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Events retrieved successfully", events)
}

// GetAvailability godoc
// @Summary Per-day availability of an event
// @Tags events
// @Produce json
// @Param id path string true "Event id"
// @Success 200 {object} response.StandardApiResponse
// @Router /events/{id}/availability [get]
func (ctrl *controller) GetAvailability(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid event ID", err.Error())
		return
	}

	availability, err := ctrl.service.GetAvailability(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Availability retrieved successfully", availability)
}

func currentActor(c *gin.Context) (users.Actor, bool) {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		return users.Actor{}, false
	}
	return users.Actor{ID: id, Role: users.Role(middleware.CurrentRole(c))}, true
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrEventNotFound):
		response.Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, ErrCapacityBelowReserved),
		errors.Is(err, ErrSpanExcludesReserved),
		errors.Is(err, ErrEventHasBookings):
		response.Error(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, ErrInvalidDateRange),
		errors.Is(err, ErrSpanTooLong),
		errors.Is(err, ErrInvalidTicketConfig):
		response.Error(c, http.StatusBadRequest, err.Error(), nil)
	default:
		response.Error(c, http.StatusInternalServerError, "Internal server error", nil)
	}
}
