package utils

import (
	"github.com/gin-gonic/gin"

	"github.com/quickstay/booking/logger"
)

// GetUserIDFromContext extracts the authenticated user's ID from the Gin
// context. The auth middleware stores it as a string under "user_id";
// user IDs are the identity provider's opaque external identifiers.
func GetUserIDFromContext(c *gin.Context) (string, error) {
	userID, exists := c.Get("user_id")
	if !exists {
		logger.ErrorLogger.Error("User ID not found in context.")
		return "", ErrUserIDNotFound
	}

	userIDStr, ok := userID.(string)
	if !ok || userIDStr == "" {
		logger.ErrorLogger.Errorf("User ID in context is not a string, actual type: %T", userID)
		return "", ErrUserIDNotFound
	}
	return userIDStr, nil
}
