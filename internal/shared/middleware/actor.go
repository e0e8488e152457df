package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/actor"
)

const actorContextKey = "actor"

// actorClaims are the token claims the settlement API cares about.
type actorClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Actor returns a middleware that resolves the calling actor from a
// bearer token and stores it on the request context. Requests without a
// valid token are rejected; webhook routes are registered outside this
// middleware.
func Actor(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims := &actorClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		id, err := uuid.Parse(claims.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid subject"})
			return
		}

		switch claims.Role {
		case "staff", "admin":
			c.Set(actorContextKey, actor.Staff(id))
		default:
			c.Set(actorContextKey, actor.Customer(id))
		}
		c.Next()
	}
}

// ActorFromContext returns the actor resolved for the request.
func ActorFromContext(c *gin.Context) (actor.Actor, bool) {
	v, exists := c.Get(actorContextKey)
	if !exists {
		return actor.Actor{}, false
	}
	a, ok := v.(actor.Actor)
	return a, ok
}
