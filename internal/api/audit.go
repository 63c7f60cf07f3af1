package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tallyhq/tally/internal/domain"
	"github.com/tallyhq/tally/internal/httputil"
	"github.com/tallyhq/tally/internal/models"
)

// AuditHandler serves audit log queries.
type AuditHandler struct {
	svc domain.AuditService
	log *logrus.Logger
}

// NewAuditHandler creates an AuditHandler.
func NewAuditHandler(svc domain.AuditService, log *logrus.Logger) *AuditHandler {
	return &AuditHandler{svc: svc, log: log}
}

// List handles GET /audit-logs.
func (h *AuditHandler) List(c *gin.Context) {
	filter := models.AuditFilter{
		Action:      c.Query("action"),
		EntityID:    c.Query("entityId"),
		ActorEmail:  c.Query("actorEmail"),
		EntityNames: splitList(c.Query("entityNames")),
	}

	var issues []httputil.Issue
	filter.TimestampStart, issues = parseTimestamp(c, "timestampStart", issues)
	filter.TimestampEnd, issues = parseTimestamp(c, "timestampEnd", issues)

	if len(issues) > 0 {
		respondValidation(c, http.StatusUnprocessableEntity, issues)

		return
	}

	page, err := h.svc.FindAndCountAll(c.Request.Context(), filter, listOptions(c))
	if err != nil {
		respondServiceError(c, h.log, "audit.list", err)

		return
	}

	c.JSON(http.StatusOK, page)
}

func parseTimestamp(c *gin.Context, key string, issues []httputil.Issue) (time.Time, []httputil.Issue) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, issues
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, append(issues, httputil.Issue{
			Code:    IssueInvalidDate,
			Path:    []any{key},
			Message: "Invalid date, use RFC3339",
		})
	}

	return t, issues
}
