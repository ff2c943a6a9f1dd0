package domain

import "errors"

// ErrNotFound is returned by repositories when no matching record exists.
// Store-specific not-found errors are translated to this sentinel so callers
// never depend on the persistence technology.
var ErrNotFound = errors.New("record not found")
