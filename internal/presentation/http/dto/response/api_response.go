package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/salon-api/pkg/apperror"
	"github.com/sangkips/salon-api/pkg/pagination"
)

// APIResponse is the envelope of every response body
type APIResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Kind    apperror.Kind         `json:"kind,omitempty"`
	Data    any                   `json:"data,omitempty"`
	Errors  []apperror.FieldError `json:"errors,omitempty"`
	Meta    *Meta                 `json:"meta,omitempty"`
}

// Meta identifies the request a response belongs to
type Meta struct {
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id"`
}

func newMeta(c *gin.Context) *Meta {
	requestID := c.GetString("request_id")
	if requestID == "" {
		requestID = c.GetHeader("X-Request-ID")
	}
	if requestID == "" {
		requestID = uuid.New().String()
	}
	return &Meta{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: requestID,
	}
}

func success(c *gin.Context, status int, message string, data any) {
	c.JSON(status, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    newMeta(c),
	})
}

// OK sends a 200 with data
func OK(c *gin.Context, message string, data any) {
	success(c, http.StatusOK, message, data)
}

// Created sends a 201 with the created resource
func Created(c *gin.Context, message string, data any) {
	success(c, http.StatusCreated, message, data)
}

// SuccessWithPagination sends a page of results
func SuccessWithPagination[T any](c *gin.Context, status int, message string, result *pagination.PaginatedResult[T]) {
	success(c, status, message, result)
}

// SuccessWithCursor sends a cursor page of results
func SuccessWithCursor[T any](c *gin.Context, status int, message string, result *pagination.CursorPaginatedResult[T]) {
	success(c, status, message, result)
}

// Error maps err to its status code. The kind lets clients tell a closed
// tab (invalid_state) from an exhausted promotion (limit_exceeded) without
// parsing the message. Errors that are not AppErrors become a generic 500.
func Error(c *gin.Context, err error) {
	appErr := apperror.GetAppError(err)
	if appErr == apperror.ErrInternalServer {
		_ = c.Error(err)
	}
	c.JSON(appErr.Code, APIResponse{
		Success: false,
		Message: appErr.Message,
		Kind:    appErr.Kind,
		Errors:  appErr.Errors,
		Meta:    newMeta(c),
	})
}

func fail(c *gin.Context, status int, kind apperror.Kind, message string) {
	c.JSON(status, APIResponse{
		Success: false,
		Message: message,
		Kind:    kind,
		Meta:    newMeta(c),
	})
}

// BadRequest sends a 400 for malformed input
func BadRequest(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, apperror.KindBadRequest, message)
}

// Unauthorized sends a 401
func Unauthorized(c *gin.Context, message string) {
	fail(c, http.StatusUnauthorized, apperror.KindUnauthorized, message)
}

// Forbidden sends a 403
func Forbidden(c *gin.Context, message string) {
	fail(c, http.StatusForbidden, apperror.KindForbidden, message)
}

// TooManyRequests sends a 429
func TooManyRequests(c *gin.Context, message string) {
	fail(c, http.StatusTooManyRequests, apperror.KindRateLimited, message)
}
