package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tallyhq/tally/internal/domain"
	"github.com/tallyhq/tally/internal/httputil"
	"github.com/tallyhq/tally/internal/middleware"
	"github.com/tallyhq/tally/internal/models"
)

// patchPayload is a partial update body.
type patchPayload interface {
	models.Payload
	IsEmpty() bool
}

// identified records expose their wire identifier for logging.
type identified interface {
	IDHex() string
}

// ResourceHandler serves the CRUD surface shared by items, roles and users.
type ResourceHandler[T any, F any] struct {
	svc       domain.ResourceService[T, F]
	entity    string
	log       *logrus.Logger
	newCreate func() models.Payload
	newPatch  func() patchPayload
	filter    func(c *gin.Context) F
}

// Register mounts the resource routes on group.
func (h *ResourceHandler[T, F]) Register(group *gin.RouterGroup) {
	group.GET("", h.List)
	group.POST("", h.Create)
	group.GET("/autocomplete", h.Autocomplete)
	group.GET("/:id", h.Get)
	group.PATCH("/:id", h.Patch)
	group.DELETE("/:id", h.Delete)
}

func (h *ResourceHandler[T, F]) action(op string) string {
	return h.entity + "." + op
}

// List handles GET /{resource}.
func (h *ResourceHandler[T, F]) List(c *gin.Context) {
	opts := listOptions(c)

	page, err := h.svc.FindAndCountAll(c.Request.Context(), h.filter(c), opts)
	if err != nil {
		respondServiceError(c, h.log, h.action("list"), err)

		return
	}

	h.log.WithFields(logrus.Fields{"action": h.action("list"), "count": page.Count, "rows": len(page.Rows)}).Info("audit")

	c.JSON(http.StatusOK, page)
}

// Create handles POST /{resource}.
func (h *ResourceHandler[T, F]) Create(c *gin.Context) {
	req := h.newCreate()
	if !bindJSON(c, req) {
		return
	}

	rec, err := h.svc.Create(c.Request.Context(), req, middleware.ActorFrom(c))
	if err != nil {
		respondServiceError(c, h.log, h.action("create"), err)

		return
	}

	h.logRecord("create", rec)

	c.JSON(http.StatusCreated, rec)
}

// Get handles GET /{resource}/:id.
func (h *ResourceHandler[T, F]) Get(c *gin.Context) {
	id, ok := checkID(c)
	if !ok {
		return
	}

	rec, err := h.svc.FindByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, h.action("get"), err)

		return
	}

	c.JSON(http.StatusOK, rec)
}

// Patch handles PATCH /{resource}/:id.
func (h *ResourceHandler[T, F]) Patch(c *gin.Context) {
	id, ok := checkID(c)
	if !ok {
		return
	}

	req := h.newPatch()
	if !bindJSON(c, req) {
		return
	}

	if req.IsEmpty() {
		respondValidation(c, http.StatusUnprocessableEntity, []httputil.Issue{{
			Code:    IssueInvalidUpdates,
			Path:    []any{},
			Message: MsgNoUpdates,
		}})

		return
	}

	rec, err := h.svc.Update(c.Request.Context(), id, req, middleware.ActorFrom(c))
	if err != nil {
		respondServiceError(c, h.log, h.action("update"), err)

		return
	}

	h.logRecord("update", rec)

	c.JSON(http.StatusOK, rec)
}

// Delete handles DELETE /{resource}/:id.
func (h *ResourceHandler[T, F]) Delete(c *gin.Context) {
	id, ok := checkID(c)
	if !ok {
		return
	}

	if err := h.svc.Destroy(c.Request.Context(), id, middleware.ActorFrom(c)); err != nil {
		respondServiceError(c, h.log, h.action("delete"), err)

		return
	}

	h.log.WithFields(logrus.Fields{"action": h.action("delete"), "id": id}).Info("audit")

	c.Status(http.StatusNoContent)
}

// Autocomplete handles GET /{resource}/autocomplete.
func (h *ResourceHandler[T, F]) Autocomplete(c *gin.Context) {
	search := strings.TrimSpace(c.Query("query"))
	limit := parseLimit(c.Query("limit"), models.DefaultAutocomplete, models.MaxAutocomplete)

	opts, err := h.svc.FindAllAutocomplete(c.Request.Context(), search, limit)
	if err != nil {
		respondServiceError(c, h.log, h.action("autocomplete"), err)

		return
	}

	c.JSON(http.StatusOK, opts)
}

func (h *ResourceHandler[T, F]) logRecord(op string, rec *T) {
	fields := logrus.Fields{"action": h.action(op)}
	if r, ok := any(rec).(identified); ok {
		fields["id"] = r.IDHex()
	}

	h.log.WithFields(fields).Info("audit")
}
