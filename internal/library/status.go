package library

import (
	"fmt"
	"strings"
)

// Status is the shelf an entry sits on.
type Status string

const (
	StatusToRead  Status = "to_read"
	StatusReading Status = "reading"
	StatusRead    Status = "read"
)

// Statuses lists every shelf in display order.
var Statuses = []Status{StatusToRead, StatusReading, StatusRead}

func (s Status) Valid() bool {
	switch s {
	case StatusToRead, StatusReading, StatusRead:
		return true
	default:
		return false
	}
}

// ParseStatus accepts the canonical names case-insensitively.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// CanTransition reports whether an entry may move from one shelf to another.
// Every edge between valid statuses is currently open.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusToRead:
		switch to {
		case StatusToRead, StatusReading, StatusRead:
			return true
		}
	case StatusReading:
		switch to {
		case StatusToRead, StatusReading, StatusRead:
			return true
		}
	case StatusRead:
		switch to {
		case StatusToRead, StatusReading, StatusRead:
			return true
		}
	}
	return false
}
