// Package models defines the entities, payloads and filters served by Tally.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Item is a named catalogue entry.
type Item struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description *string            `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IDHex returns the record identifier in its wire form.
func (r *Item) IDHex() string { return r.ID.Hex() }

// CreateItemRequest is the payload for creating an item.
type CreateItemRequest struct {
	Name        string  `json:"name" binding:"required,min=2,max=255"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=10000"`
}

// Fields implements Payload.
func (r *CreateItemRequest) Fields() map[string]any {
	f := map[string]any{"name": r.Name}
	if r.Description != nil {
		f["description"] = *r.Description
	}

	return f
}

// PatchItemRequest is the payload for partially updating an item.
type PatchItemRequest struct {
	Name        *string `json:"name,omitempty" binding:"omitempty,min=2,max=255"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=10000"`
}

// Fields implements Payload.
func (r *PatchItemRequest) Fields() map[string]any {
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
func (r *PatchItemRequest) IsEmpty() bool {
	return len(r.Fields()) == 0
}

// ItemFilter holds list filters for items. Name and Description match
// case-insensitive substrings.
type ItemFilter struct {
	ID          string
	Name        string
	Description string
}
