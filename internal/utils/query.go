// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformed is wrapped by every parse failure in this package.
var ErrMalformed = errors.New("malformed value")

// OptionalID parses a positive numeric identifier. An empty (or blank) value
// yields nil and no error; zero, negatives and non-numbers are malformed.
func OptionalID(s string) (*uint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(s, 10, 0)
	if err != nil || n == 0 {
		return nil, fmt.Errorf("%w: id %q", ErrMalformed, s)
	}
	id := uint(n)
	return &id, nil
}

// BoolDefault parses a boolean flag. An empty value yields def. Besides the
// strconv.ParseBool forms, "yes"/"no" and "on"/"off" are accepted.
func BoolDefault(s string, def bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return def, nil
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return def, fmt.Errorf("%w: flag %q", ErrMalformed, s)
	}
	return b, nil
}
