package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/mkdirlove/song-server/pkg/errors"
	"github.com/mkdirlove/song-server/pkg/httputil"
	"github.com/mkdirlove/song-server/pkg/logger"
)

// Recovery converts panics into a generic failure response. The stack trace
// goes to the log, never to the client.
func Recovery(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					logger.String("request_id", httputil.GetRequestID(c)),
					logger.String("method", c.Request.Method),
					logger.String("path", c.Request.URL.Path),
					logger.String("panic", fmt.Sprintf("%v", r)),
					logger.String("stack", string(debug.Stack())),
				)

				httputil.Fail(c, errors.New(
					errors.CodeDBOperationFailure,
					"internal server error",
					http.StatusInternalServerError,
				))
			}
		}()

		c.Next()
	}
}
