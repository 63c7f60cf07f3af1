package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tallyhq/tally/internal/httputil"
	"github.com/tallyhq/tally/internal/metrics"
)

// respondError counts the failure and delegates to httputil.RespondError.
func respondError(c *gin.Context, status int, message string) {
	metrics.ErrorsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
	httputil.RespondError(c, status, message)
}
