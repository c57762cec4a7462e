package utils

import (
	"github.com/google/uuid"
)

// GetUUID returns a fresh v4 UUID string, used for stored upload names.
func GetUUID() string {
	return uuid.New().String()
}
