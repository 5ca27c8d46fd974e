package record

import (
	"strconv"
	"strings"
)

// TrimString trims whitespace and returns nil for empty strings so optional
// columns store NULL instead of "".
func TrimString(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

// ParseNumber parses a numeric string. Thousands separators are not
// accepted; clients send raw input values.
func ParseNumber(v string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(v), 64)
}

// CoerceFloat converts an optional numeric string to a float pointer. Empty
// input means unset, never zero.
func CoerceFloat(v string) (*float64, error) {
	t := strings.TrimSpace(v)
	if t == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// CoerceInt converts an optional numeric string to an int pointer. Empty
// input means unset, never zero.
func CoerceInt(v string) (*int, error) {
	t := strings.TrimSpace(v)
	if t == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(t)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Anchored reports whether a nested object should be kept: it is persisted
// only when its anchor field is non-empty. Callers drop the whole block
// otherwise, so a record never stores an object of empty strings.
func Anchored(anchor *string) bool {
	return anchor != nil && strings.TrimSpace(*anchor) != ""
}
