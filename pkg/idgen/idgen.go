// Package idgen provides ID generation utilities for the application.
package idgen

import (
	"time"

	"github.com/rs/xid"
)

// NewID generates a new globally unique, sortable identifier.
// Returns a 20-character string using xid format.
func NewID() string {
	return xid.New().String()
}

// NewRunID generates the identifier attached to one report generation run.
// It appears in every log entry of the run and in the report footer.
func NewRunID() string {
	return NewID()
}

// Time extracts the creation time embedded in an ID produced by NewID.
// The second return value is false when the ID cannot be parsed.
func Time(id string) (time.Time, bool) {
	parsed, err := xid.FromString(id)
	if err != nil {
		return time.Time{}, false
	}
	return parsed.Time(), true
}
