package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bimbelhub/bimbel-backend/internal/response"
	"github.com/bimbelhub/bimbel-backend/internal/service"
)

// CheckSingleDeviceSession validates the JWT's JTI against the active login
// session in Redis. If the JTI doesn't match, the request is rejected (the
// session was reset or a newer login replaced it).
func CheckSingleDeviceSession(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		// Only enforce for learner tokens.
		if claims.TokenType != service.TokenTypeLearner {
			c.Next()
			return
		}

		if err := authService.ValidateLearnerSession(c.Request.Context(), claims.LearnerID, claims.ID); err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
			return
		}

		c.Next()
	}
}
