package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is a named permission group referenced by users.
type Role struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description *string            `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IDHex returns the record identifier in its wire form.
func (r *Role) IDHex() string { return r.ID.Hex() }

// CreateRoleRequest is the payload for creating a role.
type CreateRoleRequest struct {
	Name        string  `json:"name" binding:"required,min=2,max=255"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=10000"`
}

// Fields implements Payload.
func (r *CreateRoleRequest) Fields() map[string]any {
	f := map[string]any{"name": r.Name}
	if r.Description != nil {
		f["description"] = *r.Description
	}

	return f
}

// PatchRoleRequest is the payload for partially updating a role.
type PatchRoleRequest struct {
	Name        *string `json:"name,omitempty" binding:"omitempty,min=2,max=255"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=10000"`
}

// Fields implements Payload.
func (r *PatchRoleRequest) Fields() map[string]any {
	f := map[string]any{}
	if r.Name != nil {
		f["name"] = *r.Name
	}
	if r.Description != nil {
		f["description"] = *r.Description
	}

	return f
}

// IsEmpty reports whether the patch carries no updates.
func (r *PatchRoleRequest) IsEmpty() bool {
	return len(r.Fields()) == 0
}

// RoleFilter holds list filters for roles.
type RoleFilter struct {
	ID          string
	Name        string
	Description string
}
