package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Audit actions.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// AuditEntry is one immutable record of a create, update or delete.
type AuditEntry struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EntityID   string             `bson:"entityId" json:"entityId"`
	EntityName string             `bson:"entityName" json:"entityName"`
	Action     string             `bson:"action" json:"action"`
	ActorID    *string            `bson:"createdById" json:"actorId"`
	ActorEmail *string            `bson:"createdByEmail" json:"actorEmail"`
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"`
	Values     map[string]any     `bson:"values" json:"values"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// AuditFilter holds the optional filters for querying the audit log.
// Empty fields are ignored.
type AuditFilter struct {
	TimestampStart time.Time
	TimestampEnd   time.Time
	Action         string
	EntityID       string
	ActorEmail     string
	EntityNames    []string
}

// Actor identifies who performed a mutation. A nil *Actor records no actor.
type Actor struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
}

// IsZero reports whether neither field is set.
func (a *Actor) IsZero() bool {
	return a == nil || (a.ID == "" && a.Email == "")
}
