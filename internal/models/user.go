package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account holder with zero or more role references.
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email         string             `bson:"email" json:"email"`
	Username      string             `bson:"username" json:"username"`
	Roles         []string           `bson:"roles" json:"roles"`
	Locale        *string            `bson:"locale,omitempty" json:"locale,omitempty"`
	Timezone      *string            `bson:"timezone,omitempty" json:"timezone,omitempty"`
	VerifiedEmail bool               `bson:"verifiedEmail" json:"verifiedEmail"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IDHex returns the record identifier in its wire form.
func (r *User) IDHex() string { return r.ID.Hex() }

// CreateUserRequest is the payload for creating a user.
type CreateUserRequest struct {
	Username      string   `json:"username" binding:"required,max=255"`
	Email         string   `json:"email" binding:"required,email,max=320"`
	Roles         []string `json:"roles,omitempty" binding:"omitempty,dive,len=24,hexadecimal"`
	Locale        *string  `json:"locale,omitempty" binding:"omitempty,max=35"`
	Timezone      *string  `json:"timezone,omitempty" binding:"omitempty,max=64"`
	VerifiedEmail *bool    `json:"verifiedEmail,omitempty"`
}

// Fields implements Payload.
func (r *CreateUserRequest) Fields() map[string]any {
	f := map[string]any{
		"username": r.Username,
		"email":    r.Email,
	}
	applyUserOptionals(f, r.Roles, r.Locale, r.Timezone, r.VerifiedEmail)

	return f
}

// PatchUserRequest is the payload for partially updating a user.
type PatchUserRequest struct {
	Username      *string  `json:"username,omitempty" binding:"omitempty,max=255"`
	Email         *string  `json:"email,omitempty" binding:"omitempty,email,max=320"`
	Roles         []string `json:"roles,omitempty" binding:"omitempty,dive,len=24,hexadecimal"`
	Locale        *string  `json:"locale,omitempty" binding:"omitempty,max=35"`
	Timezone      *string  `json:"timezone,omitempty" binding:"omitempty,max=64"`
	VerifiedEmail *bool    `json:"verifiedEmail,omitempty"`
}

// Fields implements Payload.
func (r *PatchUserRequest) Fields() map[string]any {
	f := map[string]any{}
	if r.Username != nil {
		f["username"] = *r.Username
	}
	if r.Email != nil {
		f["email"] = *r.Email
	}
	applyUserOptionals(f, r.Roles, r.Locale, r.Timezone, r.VerifiedEmail)

	return f
}

// IsEmpty reports whether the patch carries no updates.
func (r *PatchUserRequest) IsEmpty() bool {
	return len(r.Fields()) == 0
}

func applyUserOptionals(f map[string]any, roles []string, locale, timezone *string, verified *bool) {
	if roles != nil {
		f["roles"] = roles
	}
	if locale != nil {
		f["locale"] = *locale
	}
	if timezone != nil {
		f["timezone"] = *timezone
	}
	if verified != nil {
		f["verifiedEmail"] = *verified
	}
}

// UserFilter holds list filters for users. Username and Email match
// case-insensitive substrings.
type UserFilter struct {
	ID       string
	Username string
	Email    string
}
