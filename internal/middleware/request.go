package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/epeers/portools/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	RequestIDKey    = "request_id"
	RequestIDHeader = "X-Request-ID"
)

// RequestID tags every request with the caller's X-Request-ID or a new uuid
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// GetRequestID retrieves the request ID from the context
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// Logger logs one structured line per request
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.WithFields(log.Fields{
			"request_id": GetRequestID(c),
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		}).Info("http request")
	}
}

// RequireContentLength rejects uploads without a usable Content-Length:
// 411 when it is missing, 400 when it is malformed or not positive, and
// 413 when it exceeds maxBytes. The body is capped at the declared length.
func RequireContentLength(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		length := c.Request.ContentLength
		if header := c.GetHeader("Content-Length"); header != "" {
			n, err := strconv.ParseInt(header, 10, 64)
			if err != nil {
				abort(c, http.StatusBadRequest, "bad_request", "malformed Content-Length header")
				return
			}
			length = n
		} else if length < 0 {
			abort(c, http.StatusLengthRequired, "length_required", "Content-Length header is required")
			return
		}

		if length <= 0 {
			abort(c, http.StatusBadRequest, "bad_request", "Content-Length must be positive")
			return
		}
		if length > maxBytes {
			abort(c, http.StatusRequestEntityTooLarge, "payload_too_large",
				fmt.Sprintf("body of %d bytes exceeds the limit of %d", length, maxBytes))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, length)
		c.Next()
	}
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{Error: code, Message: message})
}
