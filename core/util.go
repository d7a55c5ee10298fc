package core

import "strings"

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// RoundHalfUp divides num by den and rounds the result half-up to the nearest integer.
// num must be >= 0 and den > 0.
func RoundHalfUp(num, den int) int {
	return (2*num + den) / (2 * den)
}
