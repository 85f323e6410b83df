package utils

import (
	"errors"
	"net/http"

	"brandconnect/services/errs"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Code    string   `json:"code,omitempty"`
	Message string   `json:"message"`
	Details string   `json:"details,omitempty"`
	From    string   `json:"from,omitempty"`
	To      string   `json:"to,omitempty"`
	Allowed []string `json:"allowed,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic", zap.Any("error", err), zap.String("path", c.FullPath()))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, details string) {
	GetLogger().Warn(message, zap.String("details", details))
	c.JSON(status, ErrorResponse{Message: message, Details: details})
}

var statusByCode = map[errs.Code]int{
	errs.CodeNotFound:                  http.StatusNotFound,
	errs.CodeInvalidTransition:         http.StatusConflict,
	errs.CodeInvalidAmount:             http.StatusBadRequest,
	errs.CodeValidation:                http.StatusBadRequest,
	errs.CodePaymentDeclined:           http.StatusPaymentRequired,
	errs.CodePaymentGatewayUnreachable: http.StatusBadGateway,
	errs.CodeSlotUnavailable:           http.StatusConflict,
	errs.CodeForbidden:                 http.StatusForbidden,
}

// HTTPStatus maps a service error to its response status.
func HTTPStatus(err error) int {
	if code, ok := errs.CodeOf(err); ok {
		if status, found := statusByCode[code]; found {
			return status
		}
	}
	return http.StatusInternalServerError
}

// RespondError writes err using the service error taxonomy. Unknown errors
// are logged and reported as 500 without leaking details.
func RespondError(c *gin.Context, err error) {
	status := HTTPStatus(err)
	resp := ErrorResponse{Message: err.Error()}

	var it *errs.InvalidTransitionError
	var appErr *errs.Error
	switch {
	case errors.As(err, &it):
		resp.Code = string(errs.CodeInvalidTransition)
		resp.Message = "status change rejected"
		resp.From, resp.To, resp.Allowed = it.From, it.To, it.Allowed
	case errors.As(err, &appErr):
		resp.Code = string(appErr.Code)
		resp.Message = appErr.Message
		resp.Details = appErr.Details
	}

	if status == http.StatusInternalServerError {
		GetLogger().Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		resp = ErrorResponse{Message: "Internal Server Error"}
	}
	c.AbortWithStatusJSON(status, resp)
}
