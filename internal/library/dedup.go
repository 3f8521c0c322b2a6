package library

import "strings"

// Key is the normalized identity used for duplicate detection.
type Key struct {
	Title  string
	Author string
}

func NormalizeKey(title, author string) Key {
	return Key{
		Title:  strings.ToLower(strings.TrimSpace(title)),
		Author: strings.ToLower(strings.TrimSpace(author)),
	}
}

// FindDuplicate returns the first entry whose normalized title and author both
// equal the given pair. Matching is exact; near-duplicates are not detected.
func FindDuplicate(entries []Entry, title, author string) (Entry, bool) {
	want := NormalizeKey(title, author)
	for _, e := range entries {
		if NormalizeKey(e.Title, e.Author) == want {
			return e, true
		}
	}
	return Entry{}, false
}
