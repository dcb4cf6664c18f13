package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/gin-gonic/gin"
)

const (
	RequestIDHeader = "X-Request-ID"
	accountKey      = "account"
)

// RequestID puts the incoming X-Request-ID, or a new one, into the request
// context and echoes it back.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := logging.WithRequestID(c.Request.Context(), c.GetHeader(RequestIDHeader))
		c.Request = c.Request.WithContext(ctx)
		c.Header(RequestIDHeader, logging.RequestID(ctx))
		c.Next()
	}
}

// AccessLog logs one line per request once the handler chain is done.
func AccessLog(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

// Authenticate rejects requests without a valid bearer token and stores the
// resolved account for the next handlers.
func Authenticate(resolver SessionResolver, log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c, detailInvalidCredentials)
			return
		}

		account, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, common.ErrorUnauthorized) {
				log.Debug(c.Request.Context(), "request not authenticated", "error", err)
				unauthorized(c, detailInvalidCredentials)
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Detail: detailInternal})
			return
		}

		c.Set(accountKey, account)
		c.Next()
	}
}

func AccountFromContext(c *gin.Context) (*models.PublicAccount, bool) {
	v, ok := c.Get(accountKey)
	if !ok {
		return nil, false
	}
	account, ok := v.(*models.PublicAccount)
	return account, ok
}
