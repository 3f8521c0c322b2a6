package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"bookshelf/internal/platform/openlibrary"
)

type openLibraryClient interface {
	Search(ctx context.Context, query string, limit int) (*openlibrary.SearchResponse, error)
	CoverURL(coverID int) string
}

// OpenLibrary adapts the Open Library search API.
type OpenLibrary struct {
	client openLibraryClient
}

func NewOpenLibrary(client *openlibrary.Client) *OpenLibrary {
	return &OpenLibrary{client: client}
}

func (p *OpenLibrary) Search(ctx context.Context, query string, maxResults int) ([]Candidate, error) {
	q := NormalizeQuery(query)
	if q == "" {
		return nil, ErrEmptyQuery
	}
	res, err := p.client.Search(ctx, q, ClampMaxResults(maxResults))
	if err != nil {
		return nil, err
	}

	out := make([]Candidate, 0, len(res.Docs))
	for i, doc := range res.Docs {
		id := strings.TrimPrefix(doc.Key, "/works/")
		if id == "" {
			id = fmt.Sprintf("openlibrary-%d", i)
		}
		out = append(out, Candidate{
			ID:            id,
			Title:         strings.TrimSpace(doc.Title),
			Authors:       nonNil(doc.AuthorNames),
			Image:         p.client.CoverURL(doc.CoverID),
			PublishedDate: publishedDate(doc),
			Description:   description(doc),
		})
	}
	return out, nil
}

func publishedDate(doc openlibrary.Doc) string {
	if doc.FirstPublishYear > 0 {
		return strconv.Itoa(doc.FirstPublishYear)
	}
	if len(doc.PublishDate) > 0 {
		return doc.PublishDate[0]
	}
	return ""
}

func description(doc openlibrary.Doc) string {
	if len(doc.FirstSentence) > 0 {
		return doc.FirstSentence[0]
	}
	return doc.Subtitle
}
