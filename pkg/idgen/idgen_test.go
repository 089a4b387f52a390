package idgen

import (
	"regexp"
	"testing"
	"time"
)

// TestNewID tests the NewID function
func TestNewID(t *testing.T) {
	t.Run("returns 20 character ID", func(t *testing.T) {
		if id := NewID(); len(id) != 20 {
			t.Errorf("NewID() returned ID with length %d, want 20", len(id))
		}
	})

	t.Run("generates unique IDs", func(t *testing.T) {
		ids := make(map[string]bool)
		for i := 0; i < 1000; i++ {
			id := NewID()
			if ids[id] {
				t.Errorf("NewID() generated duplicate ID: %s", id)
			}
			ids[id] = true
		}
	})

	t.Run("generates URL-safe IDs", func(t *testing.T) {
		urlSafe := regexp.MustCompile(`^[a-v0-9]+$`)
		for i := 0; i < 100; i++ {
			if id := NewRunID(); !urlSafe.MatchString(id) {
				t.Errorf("NewRunID() returned non-URL-safe ID: %s", id)
			}
		}
	})
}

func TestTime(t *testing.T) {
	before := time.Now().Add(-time.Second)
	ts, ok := Time(NewRunID())
	if !ok {
		t.Fatal("Time() could not parse a generated ID")
	}
	if ts.Before(before.Truncate(time.Second)) {
		t.Errorf("Time() = %v, want >= %v", ts, before)
	}

	if _, ok := Time("not-an-id"); ok {
		t.Error("Time() should reject malformed IDs")
	}
}
