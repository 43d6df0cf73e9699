package util

import "strings"

// NormalizeSymbol trims whitespace and upper-cases a ticker symbol.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Indent returns the prefix for a nesting depth (two spaces per level).
func Indent(depth int) string {
	if depth <= 0 {
		return ""
	}
	return strings.Repeat("  ", depth)
}
