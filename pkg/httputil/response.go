// Package httputil renders the uniform JSON response envelope. Every
// response, success or failure, carries a machine-readable code field
// (0 for success) so clients branch on the code rather than the message.
package httputil

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mkdirlove/song-server/pkg/errors"
)

// Response is the wire envelope for every endpoint.
type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// OK sends a success envelope with the given HTTP status.
func OK(c *gin.Context, httpStatus int, message string, data interface{}) {
	c.JSON(httpStatus, Response{
		Code:      errors.CodeSuccess,
		Message:   message,
		Data:      data,
		RequestID: GetRequestID(c),
	})
}

// Fail sends a failure envelope. Unrecognized errors are reported as a
// generic persistence failure; internal detail never reaches the response.
func Fail(c *gin.Context, err error) {
	appErr, ok := err.(*errors.Error)
	if !ok {
		appErr = errors.ErrDBOperationFailure.WithError(err)
	}

	c.AbortWithStatusJSON(appErr.HTTPStatus, Response{
		Code:      appErr.Code,
		Message:   appErr.Message,
		RequestID: GetRequestID(c),
	})
}

// GetRequestID returns the request id injected by middleware, generating one
// if the middleware did not run.
func GetRequestID(c *gin.Context) string {
	if requestID := c.GetString("request_id"); requestID != "" {
		return requestID
	}
	return uuid.New().String()
}
