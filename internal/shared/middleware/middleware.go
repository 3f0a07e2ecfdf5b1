package middleware

import (
	"net/http"
	"strings"

	"festpass/internal/shared/config"
	"festpass/internal/shared/utils/response"
	"festpass/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextUserRole  = "user_role"
)

// JWTAuthWithConfig creates a JWT authentication middleware with config
func JWTAuthWithConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header is required", nil)
			return
		}

		claims, err := parseBearer(authHeader, cfg.JWT.Secret)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, err.Error(), nil)
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuthWithConfig validates a JWT token if present but doesn't require it
func OptionalAuthWithConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		if claims, err := parseBearer(authHeader, cfg.JWT.Secret); err == nil {
			setIdentity(c, claims)
		}

		c.Next()
	}
}

// RequireRoles middleware checks if user has any of the required roles
func RequireRoles(requiredRoles ...users.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString(ContextUserRole)
		if userRole == "" {
			response.Error(c, http.StatusUnauthorized, "user role not found in context", nil)
			return
		}

		for _, role := range requiredRoles {
			if userRole == string(role) {
				c.Next()
				return
			}
		}

		response.Error(c, http.StatusForbidden, "Insufficient permissions", nil)
	}
}

// RequireStaff admits every role that operates events or gates
func RequireStaff() gin.HandlerFunc {
	return RequireRoles(users.RoleAdmin, users.RoleVenueManager, users.RoleCoordinator)
}

// CurrentUserID returns the authenticated caller, if any
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetString(ContextUserID)
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// CurrentRole returns the caller's role or "" when anonymous
func CurrentRole(c *gin.Context) string {
	return c.GetString(ContextUserRole)
}

type bearerError string

func (e bearerError) Error() string { return string(e) }

const (
	errBearerFormat bearerError = "authorization header format must be Bearer {token}"
	errBearerToken  bearerError = "invalid or expired token"
	errBearerType   bearerError = "invalid token type"
)

func parseBearer(header, secret string) (jwt.MapClaims, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, errBearerFormat
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errBearerToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errBearerToken
	}
	if tokenType, ok := claims["type"]; !ok || tokenType != "access" {
		return nil, errBearerType
	}
	return claims, nil
}

func setIdentity(c *gin.Context, claims jwt.MapClaims) {
	if v, ok := claims["user_id"].(string); ok {
		c.Set(ContextUserID, v)
	}
	if v, ok := claims["email"].(string); ok {
		c.Set(ContextUserEmail, v)
	}
	if v, ok := claims["role"].(string); ok {
		c.Set(ContextUserRole, v)
	}
}
