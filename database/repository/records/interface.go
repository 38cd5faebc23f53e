package recordsRepo

import (
	"context"
	"errors"
	"time"
)

// Collections used by the booking engine.
const (
	Bookings      = "bookings"
	Properties    = "properties"
	Users         = "users"
	Notifications = "notifications"
)

// DefaultTimeout bounds every store call when no timeout is configured.
const DefaultTimeout = 5 * time.Second

var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicate          = errors.New("duplicate record")
	ErrPreconditionFailed = errors.New("record changed concurrently")
	ErrUnavailable        = errors.New("record store unavailable")
	// ErrUniqueUnsupported is returned by EnsureUniqueIndex on backends that
	// cannot enforce uniqueness themselves.
	ErrUniqueUnsupported = errors.New("unique constraints not supported by store")
)

// Filter selects records by field equality. Values listed for the same field
// are alternatives; distinct fields must all match. Only string-valued fields
// can be filtered.
type Filter map[string][]string

// Eq returns a filter matching field == value.
func Eq(field, value string) Filter {
	return Filter{field: {value}}
}

// In returns a filter matching any of values for field.
func In(field string, values ...string) Filter {
	return Filter{field: values}
}

// And merges other into f and returns f.
func (f Filter) And(other Filter) Filter {
	if f == nil {
		f = Filter{}
	}
	for k, v := range other {
		f[k] = append(f[k], v...)
	}
	return f
}

// Patch is a partial update. A nil value clears the field.
type Patch map[string]any

// Store is the generic record store the repositories are built on. Records are
// addressed by their "id" field; out arguments receive decoded JSON/BSON using
// the shared field names of the models package.
type Store interface {
	// List decodes every record of collection matching filter into out (a pointer to a slice).
	List(ctx context.Context, collection string, filter Filter, out any) error
	// Get decodes the record with id into out.
	Get(ctx context.Context, collection, id string, out any) error
	// Create inserts doc, assigning an id when it has none, and returns the id.
	Create(ctx context.Context, collection string, doc any) (string, error)
	// Patch applies a partial update to the record with id.
	Patch(ctx context.Context, collection, id string, patch Patch) error
	// PatchIf applies patch only while field still equals expected. It fails with
	// ErrPreconditionFailed otherwise.
	PatchIf(ctx context.Context, collection, id, field, expected string, patch Patch) error
	// Delete removes the record with id.
	Delete(ctx context.Context, collection, id string) error
	// EnsureUniqueIndex enforces that no two records share a non-null string value of field.
	EnsureUniqueIndex(ctx context.Context, collection, field string) error
	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}

// newContext derives a per-call context bounded by timeout.
func newContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}
