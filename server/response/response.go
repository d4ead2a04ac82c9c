package response

import (
	"net/http"

	apiError "github.com/echoflow-solutions/carescribe-api/errors"
	"github.com/gin-gonic/gin"
)

// JSON writes the uniform response envelope used by every handler.
func JSON(c *gin.Context, message string, status int, data interface{}, err error) {
	errMessage := ""
	if err != nil {
		errMessage = err.Error()
	}
	if message == "" && err != nil {
		message = errMessage
	}

	c.JSON(status, gin.H{
		"message": message,
		"data":    data,
		"errors":  errMessage,
		"status":  http.StatusText(status),
	})
}

// HandleErrors responds according to the concrete error type coming out of
// the service layer.
func HandleErrors(c *gin.Context, err error) {
	if apiErr, ok := err.(*apiError.Error); ok {
		JSON(c, apiErr.Message, apiErr.Status, nil, apiErr)
		return
	}
	JSON(c, "", http.StatusInternalServerError, nil, err)
}
