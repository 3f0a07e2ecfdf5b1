package events

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ctrl := NewController(svc)
	r.GET("/events/:id", ctrl.GetEvent)
	r.GET("/events/:id/availability", ctrl.GetAvailability)
	return r
}

func TestController_GetEvent(t *testing.T) {
	event := threeDayEvent(uuid.New(), 2)
	r := newTestRouter(NewService(newFakeRepository(event), nil, 500))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events/"+event.ID.String(), nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events/no-such-slug", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestController_GetAvailability(t *testing.T) {
	event := threeDayEvent(uuid.New(), 2)
	r := newTestRouter(NewService(newFakeRepository(event), nil, 500))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events/"+event.ID.String()+"/availability", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data AvailabilityResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data.Days, 3)
	assert.Equal(t, 2, body.Data.DailyCapacity)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events/not-a-uuid/availability", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
