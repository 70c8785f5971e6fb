package auth

import (
	"strings"

	"github.com/google/uuid"
)

// ParseUserID parses a path identifier. Anything that is not a canonical
// UUID is rejected with a validation error.
func ParseUserID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, NewValidationError("Invalid ID format.").
			WithTextCode(TextCodeInvalidID).
			WithMetadata(map[string]any{"id": raw})
	}
	return id, nil
}
