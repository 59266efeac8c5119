package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	RequestID ID
	ClientID  ID
)

// String conversions for domain IDs
func (id RequestID) String() string { return ID(id).String() }
func (id ClientID) String() string  { return ID(id).String() }

// NewRequestID issues the correlation id sent as X-Request-ID
func NewRequestID() RequestID { return RequestID(NewID()) }

// ParseClientID parses a string into ClientID. Client ids are opaque tokens
// chosen by the UI, so only emptiness and length are checked.
func ParseClientID(s string) (ClientID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("client ID cannot be empty")
	}
	if len(s) > 128 {
		return "", fmt.Errorf("client ID too long: %d bytes", len(s))
	}
	return ClientID(s), nil
}
