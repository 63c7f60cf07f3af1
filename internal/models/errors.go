package models

import "errors"

// Sentinel errors for entity lookups and writes.
var (
	// ErrNotFound indicates no record matched the identifier or filter.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey indicates a unique constraint violation (maps to HTTP 409 Conflict).
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrAuditWrite indicates the entity mutation committed but its audit entry did not.
	ErrAuditWrite = errors.New("audit log write failed")
)

