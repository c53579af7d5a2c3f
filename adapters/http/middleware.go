package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	authUC "github.com/minhvu/portfolio-hub/internal/application/usecase/auth"
	"github.com/minhvu/portfolio-hub/pkg/apperror"
	"github.com/minhvu/portfolio-hub/pkg/logger"
)

const (
	GinContextKeyUsername  = "username"
	HeaderCorrelationID    = "X-Correlation-ID"
	GinContextKeyRequestID = "requestID"
)

// CorrelationMiddleware tags every request with an id, propagated back in
// the response header for log correlation.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderCorrelationID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(GinContextKeyRequestID, id)
		c.Header(HeaderCorrelationID, id)
		c.Next()
	}
}

// RequestLogMiddleware logs each request after it completes.
func RequestLogMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(GinContextKeyRequestID)),
		)
	}
}

// AuthMiddleware guards the admin surface. The bearer token must verify and
// a live session record must back it; either failing means 401.
func AuthMiddleware(sessions *authUC.SessionUseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}

		claims, err := sessions.ValidateToken(c.Request.Context(), tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			return
		}

		c.Set(GinContextKeyUsername, claims.Username)
		c.Next()
	}
}

// respondError maps domain errors onto HTTP statuses. AppError carries its
// own payload; anything unclassified turns into an opaque 500.
func respondError(c *gin.Context, err error) {
	status := apperror.ToHTTPStatus(err)

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(status, appErr.ToJSON())
		return
	}
	c.JSON(status, gin.H{"error": "internal server error"})
}
