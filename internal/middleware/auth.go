package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"devhub/internal/apperror"
	"devhub/internal/auth"
)

// TokenValidator resolves a bearer token to a user id.
type TokenValidator interface {
	Validate(token string) (int, error)
}

var _ TokenValidator = (*auth.TokenService)(nil)

// AuthMiddleware validates the bearer token and stores the caller as "userID".
// Websocket clients cannot set headers from the browser, so the token may also
// arrive as the "token" query parameter.
func AuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abort(c, apperror.Unauthorized("Not authorized, no token"))
			return
		}

		userID, err := tokens.Validate(token)
		if err != nil {
			abort(c, apperror.Unauthorized("Not authorized, token failed"))
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}

func abort(c *gin.Context, err *apperror.AppError) {
	c.AbortWithStatusJSON(apperror.HTTPStatus(err), gin.H{"message": err.Message})
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		token := c.Query("token")
		return token, token != ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
