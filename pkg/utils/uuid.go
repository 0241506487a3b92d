package utils

import (
	"strings"

	"github.com/google/uuid"
)

// ParseOptionalUUID parses s, returning nil for an empty string
func ParseOptionalUUID(s string) (*uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// NormalizeCode trims and upper-cases a coupon or reference code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
