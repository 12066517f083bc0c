package util

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID returns a v4 UUID.
func GenerateUUID() string {
	return uuid.New().String()
}

// GenerateShortUUID returns a v4 UUID without dashes.
func GenerateShortUUID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// GenerateUserID returns a user id, "U" followed by 19 hex characters.
func GenerateUserID() string {
	return "U" + GenerateShortUUID()[:19]
}
