package models_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tallyhq/tally/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestCreateItemRequest_Fields(t *testing.T) {
	tests := []struct {
		name string
		req  models.CreateItemRequest
		want map[string]any
	}{
		{name: "name only", req: models.CreateItemRequest{Name: "Widget"}, want: map[string]any{"name": "Widget"}},
		{
			name: "with description",
			req:  models.CreateItemRequest{Name: "Widget", Description: ptr("blue")},
			want: map[string]any{"name": "Widget", "description": "blue"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.req.Fields(); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Fields() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPatchRequests_IsEmpty(t *testing.T) {
	tests := []struct {
		name string
		req  interface{ IsEmpty() bool }
		want bool
	}{
		{name: "empty item patch", req: &models.PatchItemRequest{}, want: true},
		{name: "item description", req: &models.PatchItemRequest{Description: ptr("y")}, want: false},
		{name: "empty role patch", req: &models.PatchRoleRequest{}, want: true},
		{name: "role name", req: &models.PatchRoleRequest{Name: ptr("admin")}, want: false},
		{name: "empty user patch", req: &models.PatchUserRequest{}, want: true},
		{name: "user verified false", req: &models.PatchUserRequest{VerifiedEmail: ptr(false)}, want: false},
		{name: "user empty roles", req: &models.PatchUserRequest{Roles: []string{}}, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.req.IsEmpty(); got != tc.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPatchUserRequest_FieldsIsDelta(t *testing.T) {
	req := models.PatchUserRequest{Timezone: ptr("Europe/Paris")}

	got := req.Fields()
	want := map[string]any{"timezone": "Europe/Paris"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Fields() = %v, want %v", got, want)
	}
}

func TestActor_IsZero(t *testing.T) {
	var nilActor *models.Actor
	if !nilActor.IsZero() {
		t.Error("nil actor should be zero")
	}
	if !(&models.Actor{}).IsZero() {
		t.Error("empty actor should be zero")
	}
	if (&models.Actor{Email: "a@b.c"}).IsZero() {
		t.Error("actor with email should not be zero")
	}
}

func TestAutocompleteOption_JSON(t *testing.T) {
	id := primitive.NewObjectID()
	opt := models.AutocompleteOption{ID: id, Field: "username", Value: "ada"}

	data, err := json.Marshal(opt)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if raw["id"] != id.Hex() || raw["username"] != "ada" || len(raw) != 2 {
		t.Errorf("unexpected body %s", data)
	}

	var back models.AutocompleteOption
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal option: %v", err)
	}
	if back != opt {
		t.Errorf("round trip = %+v, want %+v", back, opt)
	}
}
