package client

import (
	"encoding/json"
	"time"
)

// Item is a named catalogue entry.
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateItemRequest is the payload for creating an item.
type CreateItemRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// UpdateItemRequest is the payload for patching an item.
type UpdateItemRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Role is a named permission group.
type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateRoleRequest is the payload for creating a role.
type CreateRoleRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// UpdateRoleRequest is the payload for patching a role.
type UpdateRoleRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// User is an account holder.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	Roles         []string  `json:"roles"`
	Locale        *string   `json:"locale,omitempty"`
	Timezone      *string   `json:"timezone,omitempty"`
	VerifiedEmail bool      `json:"verifiedEmail"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CreateUserRequest is the payload for creating a user.
type CreateUserRequest struct {
	Username      string   `json:"username"`
	Email         string   `json:"email"`
	Roles         []string `json:"roles,omitempty"`
	Locale        *string  `json:"locale,omitempty"`
	Timezone      *string  `json:"timezone,omitempty"`
	VerifiedEmail *bool    `json:"verifiedEmail,omitempty"`
}

// UpdateUserRequest is the payload for patching a user.
type UpdateUserRequest struct {
	Username      *string  `json:"username,omitempty"`
	Email         *string  `json:"email,omitempty"`
	Roles         []string `json:"roles,omitempty"`
	Locale        *string  `json:"locale,omitempty"`
	Timezone      *string  `json:"timezone,omitempty"`
	VerifiedEmail *bool    `json:"verifiedEmail,omitempty"`
}

// Page is one page of results with the total match count.
type Page[T any] struct {
	Count int64 `json:"count"`
	Rows  []T   `json:"rows"`
}

// ListOptions controls list filtering, pagination and ordering.
// Filters maps query parameter names (e.g. "name", "email") to values.
type ListOptions struct {
	Limit   int
	Offset  int
	OrderBy string
	Filters map[string]string
}

// AutocompleteOption is one typeahead match: the record id plus the searched field.
type AutocompleteOption map[string]string

// AuditEntry is one immutable audit log record.
type AuditEntry struct {
	ID         string          `json:"id"`
	EntityID   string          `json:"entityId"`
	EntityName string          `json:"entityName"`
	Action     string          `json:"action"`
	ActorID    *string         `json:"actorId"`
	ActorEmail *string         `json:"actorEmail"`
	Timestamp  time.Time       `json:"timestamp"`
	Values     json.RawMessage `json:"values"`
}

// AuditQueryOptions filters audit log queries.
type AuditQueryOptions struct {
	Action         string
	EntityID       string
	ActorEmail     string
	EntityNames    []string
	TimestampStart *time.Time
	TimestampEnd   *time.Time
	Limit          int
	Offset         int
	OrderBy        string
}

// HealthResponse is the liveness check response.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Database      string  `json:"database"`
	FeedClients   int     `json:"feedClients"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
}
