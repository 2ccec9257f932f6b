// file: internal/server/error_handler.go
// version: 2.0.0
// guid: 5d6e7f8a-9b0c-1d2e-3f4a-5b6c7d8e9f0a

package server

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jdfalk/qualification-planner/internal/staffing"
)

// Error codes returned in ErrorResponse.Code
const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeValidation         = "VALIDATION_ERROR"
	CodeNoSelection        = "NO_QUALIFICATION_SELECTED"
	CodeAllocation         = "ALLOCATION_INVARIANT"
	CodeInternal           = "INTERNAL_ERROR"
	CodeConflict           = "CONFLICT"
	CodeCatalogUnavailable = "CATALOG_UNAVAILABLE"
)

// ErrorResponse provides a consistent error response format
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code,omitempty"`
	Status int    `json:"status"`
}

// RespondWithError sends a standardized error response and logs the error
func RespondWithError(c *gin.Context, statusCode int, message string, code string) {
	logErrorWithContext(c, statusCode, message)

	c.JSON(statusCode, ErrorResponse{
		Error:  message,
		Code:   code,
		Status: statusCode,
	})
}

// RespondWithBadRequest sends a 400 Bad Request error response
func RespondWithBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, message, CodeBadRequest)
}

// RespondWithValidationError sends a 400 error for validation failures
func RespondWithValidationError(c *gin.Context, field string, reason string) {
	message := "validation error: " + field
	if reason != "" {
		message = message + " (" + reason + ")"
	}
	RespondWithError(c, http.StatusBadRequest, message, CodeValidation)
}

// RespondWithInternalError sends a 500 Internal Server Error response
func RespondWithInternalError(c *gin.Context, message string) {
	RespondWithError(c, http.StatusInternalServerError, message, CodeInternal)
}

// RespondWithConflict sends a 409 Conflict error response
func RespondWithConflict(c *gin.Context, message string) {
	RespondWithError(c, http.StatusConflict, message, CodeConflict)
}

// respondWithValidation sends a ValidationError with its own code.
func respondWithValidation(c *gin.Context, err error) {
	var ve ValidationError
	if errors.As(err, &ve) {
		RespondWithError(c, http.StatusBadRequest, ve.Error(), ve.Code)
		return
	}
	RespondWithBadRequest(c, err.Error())
}

// RespondWithServiceError maps a QualificationService error to a response:
// an unusable selection is the caller's problem, a broken plan is ours.
func RespondWithServiceError(c *gin.Context, err error) {
	var sel *staffing.SelectionError
	switch {
	case errors.As(err, &sel):
		RespondWithError(c, http.StatusBadRequest, sel.Message, CodeNoSelection)
	case errors.Is(err, staffing.ErrNoSelection):
		RespondWithError(c, http.StatusBadRequest, staffing.MsgEmptySelection, CodeNoSelection)
	case staffing.IsInternal(err):
		RespondWithError(c, http.StatusInternalServerError, err.Error(), CodeAllocation)
	case errors.Is(err, ErrReadOnlyCatalog):
		RespondWithConflict(c, err.Error())
	default:
		RespondWithInternalError(c, err.Error())
	}
}

// logErrorWithContext logs an error with request context for debugging
func logErrorWithContext(c *gin.Context, statusCode int, message string) {
	method := c.Request.Method
	path := c.Request.URL.Path
	clientIP := c.ClientIP()

	logLevel := "WARNING"
	if statusCode >= 500 {
		logLevel = "ERROR"
	}

	log.Printf("[%s] %s %s %d - %s (from %s)", logLevel, method, path, statusCode, message, clientIP)
}

// HandleBindError handles JSON binding errors with a consistent response
func HandleBindError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		RespondWithError(c, http.StatusRequestEntityTooLarge, "request body too large", "BODY_TOO_LARGE")
		return true
	}

	errMsg := err.Error()
	if strings.Contains(errMsg, "required") || strings.Contains(errMsg, "binding") {
		RespondWithValidationError(c, "request body", errMsg)
	} else {
		RespondWithBadRequest(c, "invalid request: "+errMsg)
	}
	return true
}

// EnsureNotNil converts a nil string slice to an empty one so it encodes as [].
func EnsureNotNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
