package auth

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickstay/booking/logger"
	"github.com/quickstay/booking/models/user_models"
)

func getJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.WarnLogger.Warn("JWT_SECRET environment variable not set.")
		return []byte("default-insecure-secret-only-for-development")
	}
	return []byte(secret)
}

// AuthMiddleware validates the bearer token and loads the matching user
// row into the context. The token subject is the identity provider's
// external user ID; users without a synced row (webhook not yet
// delivered) are rejected.
func AuthMiddleware(db *pgxpool.Pool) gin.HandlerFunc {
	users := user_models.NewUserModel(db)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "NO_TOKEN", "error": "No authorization token provided."})
			return
		}

		var rawToken string
		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "bearer ") {
			rawToken = authHeader[7:]
		} else {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "INVALID_AUTH_FORMAT", "error": "Invalid authorization format."})
			return
		}

		token, err := jwt.Parse(rawToken, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return getJWTSecret(), nil
		})
		if err != nil || !token.Valid {
			logger.ErrorLogger.Errorf("JWT validation failed: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "INVALID_TOKEN", "error": "Invalid or expired token."})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "INVALID_TOKEN", "error": "Invalid token claims."})
			return
		}

		sub, err := claims.GetSubject()
		if err != nil || sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": "Unauthorized: Missing user identification from token."})
			return
		}

		user, err := users.GetByID(c.Request.Context(), sub)
		if err != nil {
			logger.ErrorLogger.Errorf("User (ID: %s) not found based on token: %v", sub, err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "USER_TOKEN_INVALID", "error": "User associated with token not found."})
			return
		}

		c.Set("user_id", user.ID)
		c.Set("authenticated_user", user)
		c.Next()
	}
}
