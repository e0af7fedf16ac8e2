package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"grindx/fittrack/internal/api/metrics"
	"grindx/fittrack/internal/domain"
	"grindx/fittrack/internal/service"
	"grindx/fittrack/pkg/logger"
)

const (
	// AuthCookieName is the cookie carrying the signed identity token.
	AuthCookieName = "auth-token"

	// ContextIdentityKey is the gin context key holding the resolved identity.
	ContextIdentityKey = "identity"
)

// AuthMiddleware resolves the acting identity from the auth-token cookie
// (Authorization: Bearer is accepted as a fallback for non-browser clients)
// and stores it in the request context. Absent, malformed, expired, and
// orphaned tokens are all rejected the same way, before any handler runs.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			abortWithError(c, http.StatusUnauthorized, "Authentication required")
			return
		}

		identity, err := authService.ResolveIdentity(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				abortWithError(c, http.StatusUnauthorized, "Invalid or expired token")
			} else {
				logger.Get().Error().Err(err).Msg("identity resolution failed")
				abortWithError(c, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		c.Set(ContextIdentityKey, identity)
		c.Next()
	}
}

// extractToken pulls the raw token from the auth cookie, falling back to a
// bearer Authorization header.
func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(AuthCookieName); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

// identityFromContext returns the identity stored by AuthMiddleware.
func identityFromContext(c *gin.Context) (*domain.User, error) {
	raw, exists := c.Get(ContextIdentityKey)
	if !exists {
		return nil, errors.New("identity not found in context")
	}
	identity, ok := raw.(*domain.User)
	if !ok || identity == nil {
		return nil, errors.New("invalid identity type in context")
	}
	return identity, nil
}

// abortWithError returns a JSON error response and aborts the request.
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// RequestLogger logs one line per request and feeds the HTTP metrics. Each
// request gets a uuid so log lines from the same request correlate.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Header("X-Request-Id", requestID)

		c.Next()

		elapsed := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		metrics.HTTPRequestsTotal.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Inc()
		metrics.HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route).
			Observe(elapsed.Seconds())

		logger.Get().Info().
			Str("requestId", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", elapsed).
			Msg("request")
	}
}
