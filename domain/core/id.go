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
	// SubmissionID tags one Validate or RunModel call in the logs
	SubmissionID ID
	// RequestID is sent as X-Request-ID on every HTTP request
	RequestID ID
	// ProjectID is the server-assigned identifier of a modelling project
	ProjectID ID
)

// String conversions for domain IDs
func (id SubmissionID) String() string { return ID(id).String() }
func (id RequestID) String() string    { return ID(id).String() }
func (id ProjectID) String() string    { return ID(id).String() }

// NewSubmissionID creates a time-ordered submission identifier
func NewSubmissionID() SubmissionID { return SubmissionID(NewID()) }

// NewRequestID creates a time-ordered request identifier
func NewRequestID() RequestID { return RequestID(NewID()) }

// ParseProjectID parses a string into ProjectID
func ParseProjectID(s string) (ProjectID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("project ID cannot be empty")
	}
	if strings.ContainsAny(s, "/?#") {
		return "", fmt.Errorf("project ID %q must not contain path or query characters", s)
	}
	return ProjectID(s), nil
}
