package server

import (
	"errors"
	"strconv"
	"strings"
)

var errInvalidInt = errors.New("invalid_int")

// parseNonNegativeInt returns def for an empty value.
func parseNonNegativeInt(value string, def int) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil || parsed < 0 {
		return 0, errInvalidInt
	}
	return parsed, nil
}
