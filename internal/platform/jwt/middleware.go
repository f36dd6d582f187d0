package jwtmw

import (
	"net/http"
	"strings"

	"stock_backtest/internal/api"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ContextClientID is the gin context key holding the token subject.
const ContextClientID = "clientID"

// AuthRequired returns a Gin middleware function that validates bearer tokens
// signed with secret and restricts access to authenticated clients only.
func AuthRequired(secret string) gin.HandlerFunc {
	key := []byte(secret)
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)

	return func(c *gin.Context) {
		if len(key) == 0 {
			c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorResponse{Error: "server misconfigured"})
			return
		}

		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "missing bearer token"})
			return
		}
		tokenStr := strings.TrimPrefix(auth, "Bearer ")

		var claims jwt.RegisteredClaims
		token, err := parser.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (interface{}, error) {
			return key, nil
		})
		if err != nil || !token.Valid || claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid token"})
			return
		}

		c.Set(ContextClientID, claims.Subject)
		c.Next()
	}
}
