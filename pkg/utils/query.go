package utils

import (
	"net/url"
	"strconv"
	"strings"
)

// ParseInt converts string to int with default value
func ParseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil || result < 1 {
		return defaultValue
	}

	return result
}

// ParseFloat returns nil when the value is absent or not a number.
func ParseFloat(value string) *float64 {
	if value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &f
}

// ParseBool accepts true/false/1/0; anything else is treated as absent.
func ParseBool(value string) *bool {
	if value == "" {
		return nil
	}
	b, err := strconv.ParseBool(strings.ToLower(value))
	if err != nil {
		return nil
	}
	return &b
}

// ParseOptionalString trims the value and returns nil when empty.
func ParseOptionalString(q url.Values, key string) *string {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return nil
	}
	return &v
}
