package core

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestNewRequestIDIsV7 checks the X-Request-ID format
func TestNewRequestIDIsV7(t *testing.T) {
	parsed, err := uuid.Parse(NewRequestID().String())
	if err != nil {
		t.Fatalf("request id is not a UUID: %v", err)
	}
	if parsed.Version() != 7 {
		t.Errorf("Expected UUID v7, got v%d", parsed.Version())
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if ID("not-empty").IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

// TestParseClientID tests client ID parsing
func TestParseClientID(t *testing.T) {
	tests := []struct {
		input    string
		expected ClientID
		hasError bool
	}{
		{"tab-1", ClientID("tab-1"), false},
		{"  tab-2  ", ClientID("tab-2"), false},
		{"", "", true},
		{"   ", "", true},
		{strings.Repeat("x", 129), "", true},
	}

	for _, test := range tests {
		result, err := ParseClientID(test.input)
		if test.hasError {
			if err == nil {
				t.Errorf("Expected error for input %q", test.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("Unexpected error for input %q: %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

// TestImageHashPrefix tests the log form of an image fingerprint
func TestImageHashPrefix(t *testing.T) {
	h := NewImageHash([]byte("leaf"))
	if len(h.Prefix()) != 12 {
		t.Errorf("Expected 12-char prefix, got %q", h.Prefix())
	}
	if !strings.HasPrefix(h.String(), h.Prefix()) {
		t.Errorf("Prefix %q is not a prefix of %q", h.Prefix(), h.String())
	}
	if NewImageHash([]byte("leaf")) != h {
		t.Error("Expected hashing to be deterministic")
	}
}
