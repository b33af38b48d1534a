package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"school-auth/internal/service"
)

const (
	authClaimsKey    = "auth_claims"
	authAccountIDKey = "auth_account_id"
)

// JWTAuthMiddleware exige un access token de cuenta y deja el id de cuenta en el contexto.
func JWTAuthMiddleware(jwtSvc *service.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtSvc == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "jwt not configured"})
			return
		}

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := jwtSvc.ParseAccessToken(token)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, service.ErrJWTExpired) {
				msg = "token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}
		accountID, err := claims.AccountID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(authClaimsKey, claims)
		c.Set(authAccountIDKey, accountID)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[len("Bearer "):])
	return token, token != ""
}

// GetAuthClaims obtiene claims de JWT desde el contexto.
func GetAuthClaims(c *gin.Context) (service.Claims, bool) {
	val, ok := c.Get(authClaimsKey)
	if !ok {
		return service.Claims{}, false
	}
	claims, ok := val.(service.Claims)
	return claims, ok
}

// GetAccountID devuelve la cuenta autenticada por JWTAuthMiddleware.
func GetAccountID(c *gin.Context) (int64, bool) {
	id := c.GetInt64(authAccountIDKey)
	return id, id > 0
}
