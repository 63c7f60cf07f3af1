package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tallyhq/tally/internal/domain"
	"github.com/tallyhq/tally/internal/models"
)

// NewItemHandler serves /items.
func NewItemHandler(svc domain.ItemService, log *logrus.Logger) *ResourceHandler[models.Item, models.ItemFilter] {
	useJSONFieldNames()

	return &ResourceHandler[models.Item, models.ItemFilter]{
		svc:       svc,
		entity:    "item",
		log:       log,
		newCreate: func() models.Payload { return &models.CreateItemRequest{} },
		newPatch:  func() patchPayload { return &models.PatchItemRequest{} },
		filter: func(c *gin.Context) models.ItemFilter {
			return models.ItemFilter{
				ID:          c.Query("id"),
				Name:        c.Query("name"),
				Description: c.Query("description"),
			}
		},
	}
}

// NewRoleHandler serves /roles.
func NewRoleHandler(svc domain.RoleService, log *logrus.Logger) *ResourceHandler[models.Role, models.RoleFilter] {
	useJSONFieldNames()

	return &ResourceHandler[models.Role, models.RoleFilter]{
		svc:       svc,
		entity:    "role",
		log:       log,
		newCreate: func() models.Payload { return &models.CreateRoleRequest{} },
		newPatch:  func() patchPayload { return &models.PatchRoleRequest{} },
		filter: func(c *gin.Context) models.RoleFilter {
			return models.RoleFilter{
				ID:          c.Query("id"),
				Name:        c.Query("name"),
				Description: c.Query("description"),
			}
		},
	}
}

// NewUserHandler serves /users.
func NewUserHandler(svc domain.UserService, log *logrus.Logger) *ResourceHandler[models.User, models.UserFilter] {
	useJSONFieldNames()

	return &ResourceHandler[models.User, models.UserFilter]{
		svc:       svc,
		entity:    "user",
		log:       log,
		newCreate: func() models.Payload { return &models.CreateUserRequest{} },
		newPatch:  func() patchPayload { return &models.PatchUserRequest{} },
		filter: func(c *gin.Context) models.UserFilter {
			return models.UserFilter{
				ID:       c.Query("id"),
				Username: c.Query("username"),
				Email:    c.Query("email"),
			}
		},
	}
}
