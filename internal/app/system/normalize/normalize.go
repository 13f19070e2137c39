// Package normalize canonicalises user-supplied identifiers before they are
// stored or compared.
package normalize

import "strings"

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name, preserving case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Username trims a username. Case is preserved for display; lookups fold it.
func Username(s string) string {
	return strings.TrimSpace(s)
}

// Slug trims and lowercases a group slug.
func Slug(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// AuthMethod trims and lowercases an auth method name.
func AuthMethod(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam trims a query-string value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
