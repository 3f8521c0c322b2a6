package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, Key{Title: "dune", Author: "frank herbert"}, NormalizeKey("  Dune ", "Frank HERBERT\t"))
	assert.Equal(t, Key{}, NormalizeKey("", "   "))
}

func TestFindDuplicate(t *testing.T) {
	entries := []Entry{
		{ID: "1", Title: "Dune", Author: "Frank Herbert"},
		{ID: "2", Title: "Emma", Author: ""},
		{ID: "3", Title: "dune", Author: "frank herbert"},
	}

	tests := []struct {
		name   string
		title  string
		author string
		wantID string
		found  bool
	}{
		{"case and whitespace insensitive", " DUNE", "frank herbert ", "1", true},
		{"first match wins", "dune", "Frank Herbert", "1", true},
		{"empty author matches empty author", "Emma", "", "2", true},
		{"author must match too", "Dune", "Brian Herbert", "", false},
		{"no fuzzy matching", "Dune Messiah", "Frank Herbert", "", false},
		{"punctuation is significant", "Dune.", "Frank Herbert", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindDuplicate(entries, tt.title, tt.author)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestFindDuplicate_EmptyLibrary(t *testing.T) {
	_, ok := FindDuplicate(nil, "Dune", "Frank Herbert")
	assert.False(t, ok)
}
