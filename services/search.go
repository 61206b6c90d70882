package services

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// hasNamePrefix reports whether name starts with query, ignoring case.
// An empty query matches every name.
func hasNamePrefix(name, query string) bool {
	return strings.HasPrefix(strings.ToLower(name), strings.ToLower(query))
}

// sortByName orders items by a locale-aware comparison of their names,
// the way a shop owner expects an address book to be ordered.
func sortByName[T any](items []T, name func(T) string) {
	c := collate.New(language.Und)
	sort.SliceStable(items, func(i, j int) bool {
		return c.CompareString(name(items[i]), name(items[j])) < 0
	})
}
