package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tallyhq/tally/internal/httputil"
	"github.com/tallyhq/tally/internal/metrics"
	"github.com/tallyhq/tally/internal/models"
)

// exposeErrorsKey marks requests whose 500 bodies may carry error detail.
const exposeErrorsKey = "expose_errors"

// respondError counts the failure and writes {message, statusCode}.
func respondError(c *gin.Context, status int, message string) {
	metrics.ErrorsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
	httputil.RespondError(c, status, message)
}

// respondStatus uses the standard status phrase as the message.
func respondStatus(c *gin.Context, status int) {
	respondError(c, status, http.StatusText(status))
}

// respondValidation counts the failure and writes the issues body.
func respondValidation(c *gin.Context, status int, issues []httputil.Issue) {
	metrics.ErrorsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
	httputil.RespondValidation(c, status, issues)
}

// respondServiceError maps a service error onto the HTTP error contract.
func respondServiceError(c *gin.Context, log *logrus.Logger, action string, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		respondStatus(c, http.StatusNotFound)
	case errors.Is(err, models.ErrDuplicateKey):
		respondStatus(c, http.StatusConflict)
	case errors.Is(err, context.DeadlineExceeded):
		log.WithField("action", action).Warn("request timed out")
		respondStatus(c, http.StatusGatewayTimeout)
	default:
		log.WithError(err).WithField("action", action).Error("request failed")

		if c.GetBool(exposeErrorsKey) {
			c.Set(httputil.StackKey, fmt.Sprintf("%+v", err))
		}

		respondStatus(c, http.StatusInternalServerError)
	}
}
