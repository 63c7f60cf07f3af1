package models

import (
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Pagination caps applied to list queries.
const (
	MaxListLimit        = 1000
	MaxListOffset       = 100000
	DefaultAutocomplete = 10
	MaxAutocomplete     = 100
)

// ListOptions holds pagination and ordering for list queries.
// A zero Limit or Offset means unbounded. OrderBy uses the field_DIRECTION form.
type ListOptions struct {
	Limit   int64
	Offset  int64
	OrderBy string
}

// Page is a page of rows together with the total number of matching records.
type Page[T any] struct {
	Count int64 `json:"count"`
	Rows  []T   `json:"rows"`
}

// Payload is implemented by create and patch requests. Fields returns only
// the attributes the caller supplied, keyed by their stored field name.
type Payload interface {
	Fields() map[string]any
}

// AutocompleteOption is the minimal projection returned for typeahead lookups.
// It marshals as {"id": ..., "<Field>": Value}.
type AutocompleteOption struct {
	ID    primitive.ObjectID
	Field string
	Value string
}

// MarshalJSON implements json.Marshaler.
func (o AutocompleteOption) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"id":    o.ID.Hex(),
		o.Field: o.Value,
	})
}

// UnmarshalJSON implements json.Unmarshaler. The first key other than "id"
// becomes Field.
func (o *AutocompleteOption) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for k, v := range raw {
		if k == "id" {
			id, err := primitive.ObjectIDFromHex(v)
			if err != nil {
				return err
			}
			o.ID = id
			continue
		}
		o.Field, o.Value = k, v
	}

	return nil
}
