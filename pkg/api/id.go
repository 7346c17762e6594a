package api

import "github.com/google/uuid"

// NewID generates a random conversation ID.
func NewID() string {
	return uuid.NewString()
}
