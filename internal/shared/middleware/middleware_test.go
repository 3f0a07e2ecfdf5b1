package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"festpass/internal/shared/config"
	"festpass/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func testConfig() *config.Config {
	return &config.Config{JWT: config.JWTConfig{Secret: testSecret}}
}

func signToken(t *testing.T, userID, role, tokenType string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"email":   "staff@festpass.in",
		"role":    role,
		"type":    tokenType,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", append(handlers, func(c *gin.Context) {
		id, _ := CurrentUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id.String(), "role": CurrentRole(c)})
	})...)
	return r
}

func do(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	userID := uuid.New().String()
	r := newEngine(JWTAuthWithConfig(testConfig()))

	assert.Equal(t, http.StatusUnauthorized, do(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "Bearer not-a-jwt").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "Bearer "+signToken(t, userID, "USER", "refresh")).Code)

	w := do(r, "Bearer "+signToken(t, userID, "USER", "access"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID)
}

func TestOptionalAuth(t *testing.T) {
	r := newEngine(OptionalAuthWithConfig(testConfig()))

	w := do(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), uuid.Nil.String())

	w = do(r, "Bearer garbage")
	assert.Equal(t, http.StatusOK, w.Code)

	userID := uuid.New().String()
	w = do(r, "Bearer "+signToken(t, userID, "USER", "access"))
	assert.Contains(t, w.Body.String(), userID)
}

func TestRequireRoles(t *testing.T) {
	cfg := testConfig()
	r := newEngine(JWTAuthWithConfig(cfg), RequireRoles(users.RoleAdmin, users.RoleVenueManager))

	assert.Equal(t, http.StatusForbidden, do(r, "Bearer "+signToken(t, uuid.New().String(), "USER", "access")).Code)
	assert.Equal(t, http.StatusOK, do(r, "Bearer "+signToken(t, uuid.New().String(), "VENUE_MANAGER", "access")).Code)
}

func TestRequireStaff(t *testing.T) {
	r := newEngine(JWTAuthWithConfig(testConfig()), RequireStaff())

	assert.Equal(t, http.StatusOK, do(r, "Bearer "+signToken(t, uuid.New().String(), "COORDINATOR", "access")).Code)
	assert.Equal(t, http.StatusForbidden, do(r, "Bearer "+signToken(t, uuid.New().String(), "USER", "access")).Code)
}
