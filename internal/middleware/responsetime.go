package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// ResponseTimeHeader carries the handler latency, e.g. "12ms".
const ResponseTimeHeader = "X-Response-Time"

type timedWriter struct {
	gin.ResponseWriter
	start   time.Time
	stamped bool
}

func (w *timedWriter) stamp() {
	if w.stamped {
		return
	}
	w.stamped = true
	w.Header().Set(ResponseTimeHeader, formatMillis(time.Since(w.start)))
}

func (w *timedWriter) WriteHeaderNow() {
	w.stamp()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *timedWriter) Write(b []byte) (int, error) {
	w.stamp()
	return w.ResponseWriter.Write(b)
}

func (w *timedWriter) WriteString(s string) (int, error) {
	w.stamp()
	return w.ResponseWriter.WriteString(s)
}

// ResponseTime sets X-Response-Time just before the response headers go out.
func ResponseTime() gin.HandlerFunc {
	return func(c *gin.Context) {
		w := &timedWriter{ResponseWriter: c.Writer, start: time.Now()}
		c.Writer = w

		c.Next()

		// Bodiless responses are flushed by gin after the chain returns.
		if !w.Written() {
			w.stamp()
		}
	}
}

func formatMillis(d time.Duration) string {
	return strconv.FormatInt(d.Milliseconds(), 10) + "ms"
}
