package client

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ResourceService handles CRUD operations for one resource collection.
// T is the record type, C the create payload and U the patch payload.
type ResourceService[T, C, U any] struct {
	c    *Client
	path string
}

// List returns a page of records with optional filtering and pagination.
func (s *ResourceService[T, C, U]) List(ctx context.Context, opts *ListOptions) (*Page[T], error) {
	params := url.Values{}
	if opts != nil {
		for k, v := range opts.Filters {
			params.Set(k, v)
		}
		setPaging(params, opts.Limit, opts.Offset, opts.OrderBy)
	}
	var page Page[T]
	if err := s.c.get(ctx, s.path, params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get returns a single record by ID.
func (s *ResourceService[T, C, U]) Get(ctx context.Context, id string) (*T, error) {
	var rec T
	if err := s.c.get(ctx, s.itemPath(id), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Create creates a new record.
func (s *ResourceService[T, C, U]) Create(ctx context.Context, req *C) (*T, error) {
	var rec T
	if err := s.c.post(ctx, s.path, req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Update patches an existing record by ID. Only set fields are sent.
func (s *ResourceService[T, C, U]) Update(ctx context.Context, id string, req *U) (*T, error) {
	var rec T
	if err := s.c.patch(ctx, s.itemPath(id), req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete removes a record by ID.
func (s *ResourceService[T, C, U]) Delete(ctx context.Context, id string) error {
	return s.c.del(ctx, s.itemPath(id))
}

// Autocomplete returns up to limit typeahead matches for query.
// A zero limit uses the server default.
func (s *ResourceService[T, C, U]) Autocomplete(ctx context.Context, query string, limit int) ([]AutocompleteOption, error) {
	params := url.Values{}
	params.Set("query", query)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var opts []AutocompleteOption
	if err := s.c.get(ctx, s.path+"/autocomplete", params, &opts); err != nil {
		return nil, err
	}
	return opts, nil
}

func (s *ResourceService[T, C, U]) itemPath(id string) string {
	return s.path + "/" + url.PathEscape(id)
}

// AuditService handles audit log queries.
type AuditService struct {
	c *Client
}

// List returns audit log entries matching the given options.
func (s *AuditService) List(ctx context.Context, opts *AuditQueryOptions) (*Page[AuditEntry], error) {
	params := url.Values{}
	if opts != nil {
		if opts.Action != "" {
			params.Set("action", opts.Action)
		}
		if opts.EntityID != "" {
			params.Set("entityId", opts.EntityID)
		}
		if opts.ActorEmail != "" {
			params.Set("actorEmail", opts.ActorEmail)
		}
		if len(opts.EntityNames) > 0 {
			params.Set("entityNames", strings.Join(opts.EntityNames, ","))
		}
		if opts.TimestampStart != nil {
			params.Set("timestampStart", opts.TimestampStart.Format(time.RFC3339))
		}
		if opts.TimestampEnd != nil {
			params.Set("timestampEnd", opts.TimestampEnd.Format(time.RFC3339))
		}
		setPaging(params, opts.Limit, opts.Offset, opts.OrderBy)
	}
	var page Page[AuditEntry]
	if err := s.c.get(ctx, "/audit-logs", params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func setPaging(params url.Values, limit, offset int, orderBy string) {
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}
	if orderBy != "" {
		params.Set("orderBy", orderBy)
	}
}
