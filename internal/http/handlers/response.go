// Package handlers implements the admin API endpoints.
//
// Every error leaves through fail or failInternal, so clients always see the
// ErrorResponse envelope and server-side causes stay in the logs:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "community not found"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-community-bot/internal/http/middleware"
)

// ErrorResponse is the error envelope returned by every endpoint.
type ErrorResponse struct {
	// Echo of the X-Request-ID response header
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go)
	Code string `json:"code" example:"not_found"`
	// Human-readable message
	Message string `json:"message" example:"community not found"`
}

// fail aborts with status and an ErrorResponse carrying code and msg.
func fail(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	})
}

// failInternal answers 500 with a generic message. err is attached to the
// request so the access log carries it, and logged once here with the
// request-scoped logger.
func failInternal(c *gin.Context, code string, err error) {
	_ = c.Error(err)
	middleware.LoggerFrom(c).Error().Err(err).Str("code", code).Msg("admin api failure")
	fail(c, http.StatusInternalServerError, code, "internal error")
}

// Fail is exported for the router's NoRoute/NoMethod fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
