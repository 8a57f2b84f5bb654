package middleware

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/yigit/rea/internal/app/auth"
	"github.com/yigit/rea/internal/pkg/apperrors"
	pkgauth "github.com/yigit/rea/internal/pkg/auth"
)

// SessionCookie carries the access token for browser clients
const SessionCookie = "rea_session"

const actorKey = "actor"

// ActorResolver turns an access token into the actor it identifies
type ActorResolver interface {
	ResolveActor(ctx context.Context, token string) (auth.Actor, error)
}

// AuthMiddleware resolves the acting identity of each request
type AuthMiddleware struct {
	resolver ActorResolver
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(resolver ActorResolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// Authenticate reads the bearer token or the session cookie. Requests without
// a token continue as anonymous; an invalid or expired token is rejected.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := requestToken(c)
		if err != nil {
			HandleAPIError(c, err)
			return
		}

		actor := auth.Anonymous()
		if token != "" {
			actor, err = m.resolver.ResolveActor(c.Request.Context(), token)
			if err != nil {
				HandleAPIError(c, err)
				return
			}
			c.Set("userID", actor.ID())
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// requestToken prefers the Authorization header over the cookie
func requestToken(c *gin.Context) (string, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		token, err := pkgauth.ExtractBearerToken(header)
		if err != nil {
			return "", fmt.Errorf("%w: %v", apperrors.ErrTokenInvalid, err)
		}
		return token, nil
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie, nil
	}
	return "", nil
}

// ActorFromContext returns the actor Authenticate stored, anonymous when absent
func ActorFromContext(c *gin.Context) auth.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(auth.Actor); ok {
			return actor
		}
	}
	return auth.Anonymous()
}
