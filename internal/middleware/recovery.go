package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tallyhq/tally/internal/httputil"
)

// Recovery turns panics into 500 responses. With exposeStack the stack is
// included in the body; production deployments pass false.
func Recovery(log *logrus.Logger, exposeStack bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			stack := string(debug.Stack())
			log.WithFields(logrus.Fields{
				"error":      fmt.Sprint(rec),
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"request_id": c.GetString(RequestIDKey),
				"stack":      stack,
			}).Error("panic recovered")

			if exposeStack {
				c.Set(httputil.StackKey, stack)
			}

			respondError(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		}()

		c.Next()
	}
}
