package models

import "github.com/google/uuid"

// NewUUID generates a new UUID string
func NewUUID() string {
	return uuid.New().String()
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 {
	return &v
}
