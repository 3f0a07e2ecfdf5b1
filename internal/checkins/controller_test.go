package checkins

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"festpass/internal/bookings"
	"festpass/internal/shared/middleware"
	"festpass/internal/shared/utils/validation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postCheckIn(t *testing.T, svc Service, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Register()

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, staff.ID.String())
		c.Set(middleware.ContextUserRole, string(staff.Role))
		c.Next()
	})
	r.POST("/checkins", NewController(svc).CheckIn)

	raw, err := json.Marshal(body)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/checkins", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestController_CheckInStatusCodes(t *testing.T) {
	svc, _, ticket := newGate(t, bookings.PaymentStatusSuccess)
	event := ticket.EventID.String()

	w := postCheckIn(t, svc, map[string]string{"event_id": event, "code": ticket.OTP, "date": "2026-12-01"})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = postCheckIn(t, svc, map[string]string{"event_id": event, "code": ticket.OTP, "date": "2026-12-01"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = postCheckIn(t, svc, map[string]string{"event_id": event, "code": ticket.OTP, "date": "2026-12-03"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = postCheckIn(t, svc, map[string]string{"event_id": event, "code": "111111"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = postCheckIn(t, svc, map[string]string{"event_id": event, "code": ticket.OTP, "date": "first of december"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	pending, _, unpaid := newGate(t, bookings.PaymentStatusPending)
	w = postCheckIn(t, pending, map[string]string{"event_id": unpaid.EventID.String(), "code": unpaid.OTP, "date": "2026-12-01"})
	assert.Equal(t, http.StatusConflict, w.Code)
}
