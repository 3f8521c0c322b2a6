package search

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultMaxResults is used when the caller does not ask for a size.
	DefaultMaxResults = 10
	// MaxResults caps every provider call.
	MaxResults = 40
)

var ErrEmptyQuery = errors.New("search query is empty")

// Candidate is an unpersisted search hit. Every field is populated: missing
// provider data becomes "" or an empty slice.
type Candidate struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Image         string   `json:"image"`
	PublishedDate string   `json:"published_date"`
	Description   string   `json:"description"`
}

// FirstAuthor is the author recorded on a library entry.
func (c Candidate) FirstAuthor() string {
	if len(c.Authors) == 0 {
		return ""
	}
	return c.Authors[0]
}

// Provider is the search collaborator. Results keep provider relevance order.
type Provider interface {
	Search(ctx context.Context, query string, maxResults int) ([]Candidate, error)
}

// NormalizeQuery trims, collapses inner whitespace and composes the query to
// NFC so visually identical input hits providers the same way.
func NormalizeQuery(q string) string {
	return norm.NFC.String(strings.Join(strings.Fields(q), " "))
}

// ClampMaxResults applies the default and the upper bound.
func ClampMaxResults(n int) int {
	switch {
	case n <= 0:
		return DefaultMaxResults
	case n > MaxResults:
		return MaxResults
	default:
		return n
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, 0, len(s))
	for _, v := range s {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
