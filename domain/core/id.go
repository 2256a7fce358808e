package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a locally generated identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
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

// Local ID types
type (
	RequestID ID
	DraftID   ID
)

func (id RequestID) String() string { return ID(id).String() }
func (id DraftID) String() string   { return ID(id).String() }

// NewRequestID returns an id for the X-Request-ID header
func NewRequestID() RequestID { return RequestID(NewID()) }

// NewDraftID returns an id for a wizard draft
func NewDraftID() DraftID { return DraftID(NewID()) }

// ParseDraftID parses a string into DraftID
func ParseDraftID(s string) (DraftID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("draft ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("draft ID %q is not a uuid: %w", s, err)
	}
	return DraftID(s), nil
}
