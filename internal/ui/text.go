package ui

import "github.com/mattn/go-runewidth"

// Truncate shortens s to at most maxWidth terminal cells, ending with an
// ellipsis when anything was cut.
func Truncate(s string, maxWidth int) string {
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}
