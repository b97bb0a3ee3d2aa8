package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nvtienanh/metagate/internal/repositories"
	"github.com/nvtienanh/metagate/internal/services/visibility"
)

// Error code constants, format: ERR_<CATEGORY>_<DESCRIPTION>
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeValidation is used for invalid request payloads
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the requester lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeNotFound is used when a resource is not found or hidden
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:      http.StatusInternalServerError,
	ErrCodeValidation:    http.StatusBadRequest,
	ErrCodeInvalidJSON:   http.StatusBadRequest,
	ErrCodeUnauthorized:  http.StatusUnauthorized,
	ErrCodeForbidden:     http.StatusForbidden,
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
}

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not known.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// respondError writes an error response with its mapped status code
func respondError(c *gin.Context, code, message string) {
	c.JSON(GetHTTPStatus(code), NewErrorResponse(code, message))
}

// respondServiceError translates service-layer errors into API responses.
// NotFound deliberately carries the same body whether the entity is missing
// or merely hidden from the requester.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, visibility.ErrNotFound),
		errors.Is(err, repositories.ErrEntityNotFound):
		respondError(c, ErrCodeNotFound, "resource not found")
	case errors.Is(err, visibility.ErrAuthorizationDenied):
		respondError(c, ErrCodeForbidden, "insufficient permissions")
	case errors.Is(err, repositories.ErrEntityAlreadyExists):
		respondError(c, ErrCodeAlreadyExists, "resource already exists")
	default:
		_ = c.Error(err)
		respondError(c, ErrCodeInternal, "internal server error")
	}
}
