package middleware

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/irfndi/fundamentals-ai-go/internal/config"
)

// RoleAdmin is the role claim that grants access to the admin routes.
const RoleAdmin = "admin"

// AdminClaims are the JWT claims accepted by the admin routes.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AdminMiddleware guards the job and cache administration endpoints. A
// request passes with the configured API key or, when a JWT secret is set,
// with an HS256 token whose role claim is admin.
type AdminMiddleware struct {
	apiKey    string
	jwtSecret []byte
}

// NewAdminMiddleware creates a new admin authentication middleware
func NewAdminMiddleware(cfg config.SecurityConfig) *AdminMiddleware {
	am := &AdminMiddleware{apiKey: cfg.AdminAPIKey}
	if cfg.JWTSecret != "" {
		am.jwtSecret = []byte(cfg.JWTSecret)
	}
	return am
}

// RequireAdminAuth middleware validates admin API keys or admin tokens
func (am *AdminMiddleware) RequireAdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Authorization: Bearer <api key or JWT>
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenParts := strings.SplitN(authHeader, " ", 2)
			if len(tokenParts) == 2 && strings.EqualFold(tokenParts[0], "bearer") {
				credential := strings.TrimSpace(tokenParts[1])
				if am.ValidateAdminKey(credential) {
					c.Set("admin_subject", "api_key")
					c.Next()
					return
				}
				if claims, err := am.ValidateToken(credential); err == nil {
					c.Set("admin_subject", claims.Subject)
					c.Next()
					return
				}
			}
		}

		if am.ValidateAdminKey(c.GetHeader("X-API-Key")) {
			c.Set("admin_subject", "api_key")
			c.Next()
			return
		}

		// Query parameter is kept for local tooling only
		if am.ValidateAdminKey(c.Query("api_key")) {
			c.Set("admin_subject", "api_key")
			c.Next()
			return
		}

		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "Unauthorized",
			"message": "Valid admin API key or token required for this endpoint",
		})
		c.Abort()
	}
}

// ValidateAdminKey validates an admin API key. An unset key matches nothing.
func (am *AdminMiddleware) ValidateAdminKey(key string) bool {
	if am.apiKey == "" || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(am.apiKey)) == 1
}

// GenerateToken signs an admin token for subject valid for duration.
func (am *AdminMiddleware) GenerateToken(subject string, duration time.Duration) (string, error) {
	if am.jwtSecret == nil {
		return "", errors.New("jwt secret is not configured")
	}
	now := time.Now()
	claims := &AdminClaims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(am.jwtSecret)
}

// ValidateToken parses an HS256 token and requires the admin role.
func (am *AdminMiddleware) ValidateToken(tokenString string) (*AdminClaims, error) {
	if am.jwtSecret == nil {
		return nil, errors.New("jwt secret is not configured")
	}

	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return am.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*AdminClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Role != RoleAdmin {
		return nil, fmt.Errorf("role %q is not allowed", claims.Role)
	}
	return claims, nil
}
