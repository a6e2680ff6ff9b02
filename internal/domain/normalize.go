package domain

import "strings"

// NormalizeHumanName trims leading/trailing whitespace and collapses internal whitespace runs.
// It is used for display names built from first and family name.
func NormalizeHumanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
