package store

import (
	"context"

	"github.com/tallyhq/tally/internal/models"
	"github.com/tallyhq/tally/internal/query"
)

// UserDescriptor describes the users collection.
var UserDescriptor = Descriptor[models.UserFilter]{
	Collection:   "users",
	EntityName:   "user",
	DefaultSort:  "username_ASC",
	UniqueFields: []string{"email", "username"},
	Defaults: map[string]any{
		"roles":         []string{},
		"verifiedEmail": false,
	},
	DisplayField: "username",
	SearchFields: []string{"username", "email"},
	ApplyFilter: func(q *query.Builder, f models.UserFilter) {
		if f.ID != "" {
			q.AppendID(query.IDField, f.ID)
		}
		if f.Username != "" {
			q.AppendContainsFold("username", f.Username)
		}
		if f.Email != "" {
			q.AppendContainsFold("email", f.Email)
		}
	},
}

// UserStore provides data access for users.
type UserStore struct {
	*Repository[models.User, models.UserFilter]
}

// NewUserStore creates a UserStore.
func NewUserStore(base Base, audit AuditLogger) *UserStore {
	return &UserStore{Repository: NewRepository[models.User](base, audit, UserDescriptor)}
}

// FindByUsername returns users whose username equals username.
func (s *UserStore) FindByUsername(ctx context.Context, username string) ([]models.User, error) {
	return s.FindByField(ctx, "username", username)
}

// FindByUsernameAndNotID returns users named username other than excludeID.
func (s *UserStore) FindByUsernameAndNotID(ctx context.Context, username, excludeID string) ([]models.User, error) {
	return s.FindByFieldAndNotID(ctx, "username", username, excludeID)
}

// FindByEmail returns users whose email equals email.
func (s *UserStore) FindByEmail(ctx context.Context, email string) ([]models.User, error) {
	return s.FindByField(ctx, "email", email)
}
