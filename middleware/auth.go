package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/kapehan/kiosk-pos-api/config"
)

// AuthError represents an authentication/authorization error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// Claims carried by a dashboard session token.
type Claims struct {
	Email string
	Name  string
	Role  string
}

// RequireToken validates the Bearer token on the request and stores the
// claims in the Gin context for handlers downstream.
func RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parseToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_TOKEN",
					"message": err.Error(),
				},
			})
			return
		}

		c.Set("auth_email", claims.Email)
		c.Set("auth_name", claims.Name)
		c.Set("auth_role", claims.Role)
		c.Next()
	}
}

// RequireRole validates the token AND checks that its role claim is one
// of the allowed roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parseToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_TOKEN",
					"message": err.Error(),
				},
			})
			return
		}

		allowed := false
		for _, role := range roles {
			if claims.Role == role {
				allowed = true
				break
			}
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Insufficient permissions",
				},
			})
			return
		}

		c.Set("auth_email", claims.Email)
		c.Set("auth_name", claims.Name)
		c.Set("auth_role", claims.Role)
		c.Next()
	}
}

// parseToken extracts and validates the HS256 bearer token.
func parseToken(c *gin.Context) (*Claims, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, &AuthError{Code: "MISSING_TOKEN", Message: "Authorization header is required"}
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, &AuthError{Code: "MALFORMED_HEADER", Message: "Authorization header must be 'Bearer <token>'"}
	}

	cfg := config.GetConfig()
	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, &AuthError{Code: "INVALID_TOKEN", Message: "Failed to validate token"}
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, &AuthError{Code: "INVALID_TOKEN", Message: "Failed to validate token"}
	}

	claims := &Claims{}
	if sub, ok := mapClaims["sub"].(string); ok {
		claims.Email = sub
	}
	if name, ok := mapClaims["name"].(string); ok {
		claims.Name = name
	}
	if role, ok := mapClaims["role"].(string); ok {
		claims.Role = role
	}
	if claims.Email == "" || claims.Role == "" {
		return nil, &AuthError{Code: "INVALID_TOKEN", Message: "Token is missing required claims"}
	}
	return claims, nil
}

// GetClaims extracts the validated claims from the Gin context
func GetClaims(c *gin.Context) (*Claims, error) {
	email, exists := c.Get("auth_email")
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}
	emailStr, ok := email.(string)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Email claim is not a string"}
	}

	claims := &Claims{Email: emailStr}
	if name, exists := c.Get("auth_name"); exists {
		if s, ok := name.(string); ok {
			claims.Name = s
		}
	}
	if role, exists := c.Get("auth_role"); exists {
		if s, ok := role.(string); ok {
			claims.Role = s
		}
	}
	return claims, nil
}
