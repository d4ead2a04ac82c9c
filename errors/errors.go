package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
)

// Error is the API error type carried from services up to handlers. Status is
// the HTTP status the handler should respond with.
type Error struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

var (
	ErrNotFound            = New("not found", http.StatusNotFound)
	ErrBadRequest          = New("bad request", http.StatusBadRequest)
	ErrUnauthorized        = New("unauthorized", http.StatusUnauthorized)
	ErrInternalServerError = New("internal server error", http.StatusInternalServerError)
	ErrInvalidPassword     = New("invalid email or password", http.StatusUnprocessableEntity)

	InActiveUserError = errors.New("user is inactive")
)

func New(message string, status int) *Error {
	return &Error{
		Message: message,
		Status:  status,
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("error: %s", e.Message)
}

// GetUniqueContraintError maps a postgres unique-violation error to a client
// facing conflict error.
func GetUniqueContraintError(err error) *Error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "email"):
		return New("email already exists", http.StatusConflict)
	case strings.Contains(msg, "duplicate"):
		return New("record already exists", http.StatusConflict)
	default:
		return New(msg, http.StatusInternalServerError)
	}
}

// ErrorHandler is used by the rate limit middleware when a client exceeds its
// quota.
func ErrorHandler(c *gin.Context, info ratelimit.Info) {
	c.JSON(http.StatusTooManyRequests, gin.H{
		"message": "too many requests, try again in " + info.ResetTime.Format("15:04:05"),
		"errors":  "rate limit exceeded",
		"status":  http.StatusText(http.StatusTooManyRequests),
	})
	c.Abort()
}
