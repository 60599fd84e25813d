package api

import (
	"alcyxob/fitness-social/internal/metrics"
	"alcyxob/fitness-social/internal/service"
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v9"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContextUserIDKey holds the authenticated user's id as a hex string.
const ContextUserIDKey = "userID"

// RequestRateLimiter is satisfied by *redis_rate.Limiter.
type RequestRateLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// ok is false when the header is absent.
func bearerToken(c *gin.Context) (token string, ok bool, err error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false, nil
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", true, errors.New("Authorization header format must be Bearer {token}")
	}
	return strings.TrimSpace(parts[1]), true, nil
}

// AuthMiddleware requires a valid session token and stores the caller's
// user id in the context.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present, err := bearerToken(c)
		if !present {
			abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, "Authorization header is missing")
			return
		}
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, err.Error())
			return
		}
		if !authenticate(c, authService, token) {
			return
		}
		c.Next()
	}
}

// OptionalAuthMiddleware authenticates the caller when a token is sent and
// lets anonymous requests through. A bad token is still rejected.
func OptionalAuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present, err := bearerToken(c)
		if !present {
			c.Next()
			return
		}
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, err.Error())
			return
		}
		if !authenticate(c, authService, token) {
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, authService service.AuthService, token string) bool {
	principal, err := authService.Authenticate(c.Request.Context(), token)
	if err != nil {
		abortWithServiceError(c, err)
		return false
	}
	c.Set(ContextUserIDKey, principal.UserID.Hex()) // Store UserID as string (Hex representation)
	return true
}

// RateLimit allows perMinute requests per client IP on the route. A nil
// limiter disables the check. Limiter failures let the request through.
func RateLimit(limiter RequestRateLimiter, routeName string, perMinute int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || perMinute <= 0 {
			c.Next()
			return
		}

		key := "ratelimit:" + routeName + ":" + c.ClientIP()
		res, err := limiter.Allow(c.Request.Context(), key, redis_rate.PerMinute(perMinute))
		if err != nil {
			log.Warnf("rate limiter for %s failed: %s", routeName, err)
			c.Next()
			return
		}
		if res.Allowed > 0 {
			c.Next()
			return
		}

		retryAfter := int(res.RetryAfter.Seconds()) + 1
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		abortWithError(c, http.StatusTooManyRequests, CodeRateLimited,
			fmt.Sprintf("Too many requests, retry after %d seconds", retryAfter))
	}
}

// RequestMetrics records the request count, duration and in-flight gauge.
func RequestMetrics(m *metrics.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		m.GaugeRequests.Add(1)
		defer m.GaugeRequests.Add(-1)

		begin := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HistRequestDuration.WithLabelValues(route).Observe(time.Since(begin).Seconds())
		m.CounterRequests.With(prometheus.Labels{
			"method": c.Request.Method,
			"route":  route,
			"status": strconv.Itoa(c.Writer.Status()),
		}).Inc()
	}
}

// PanicRecovery turns a handler panic into a 500 and counts it.
func PanicRecovery(m *metrics.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("http: panic serving %s: %v\n%s", c.Request.URL.Path, r, debug.Stack())
				m.RequestPanicked()
				abortWithError(c, http.StatusInternalServerError, CodeInternal, "An unexpected error occurred")
			}
		}()
		c.Next()
	}
}

// Helper function to get User ID from context (used by handlers)
func getUserIDFromContext(c *gin.Context) (string, error) {
	idRaw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return "", errors.New("user ID not found in context")
	}
	idStr, ok := idRaw.(string)
	if !ok {
		return "", errors.New("invalid user ID type in context")
	}
	return idStr, nil
}

// requireUserID returns the authenticated caller, aborting with 401 when
// there is none.
func requireUserID(c *gin.Context) (primitive.ObjectID, bool) {
	userIDStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, err.Error())
		return primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, "Invalid user ID in token")
		return primitive.NilObjectID, false
	}
	return userID, true
}

// optionalUserID returns the caller's id, or NilObjectID for anonymous requests.
func optionalUserID(c *gin.Context) primitive.ObjectID {
	userIDStr, err := getUserIDFromContext(c)
	if err != nil {
		return primitive.NilObjectID
	}
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		return primitive.NilObjectID
	}
	return userID
}

// parseObjectIDParam reads a hex ObjectID path parameter. An id that cannot
// exist is reported as notFound.
func parseObjectIDParam(c *gin.Context, name string, notFound error) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithServiceError(c, notFound)
		return primitive.NilObjectID, false
	}
	return id, true
}
