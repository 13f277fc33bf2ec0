package middleware

import (
	autherrors "go-attendance/internal/auth/errors"

	"github.com/gin-gonic/gin"
)

func ExtractUserID() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			abortWith(c, autherrors.ErrTokenMissing)
			return
		}

		userIDStr, ok := userID.(string)
		if !ok || userIDStr == "" {
			abortWith(c, autherrors.ErrInvalidToken)
			return
		}

		// Set ulang dengan tipe yang sudah pasti string
		c.Set("user_id_validated", userIDStr)
		c.Next()
	}
}
