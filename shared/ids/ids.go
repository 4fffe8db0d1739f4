// Package ids provides identifier and timestamp generation shared
// across the service.
package ids

import (
	"time"

	"github.com/google/uuid"
)

// NewImageID generates a fresh globally-unique image identifier.
func NewImageID() string {
	return uuid.NewString()
}

// Timestamp returns the current UTC time formatted as an RFC 3339
// string with nanosecond precision. Records persist timestamps as
// strings so the stored item shape stays uniformly string-typed.
func Timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
