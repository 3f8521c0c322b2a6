package search

import (
	"context"
	"fmt"
	"strings"

	"bookshelf/internal/platform/googlebooks"
)

type volumesClient interface {
	Volumes(ctx context.Context, query string, maxResults int) (*googlebooks.VolumesResponse, error)
}

// GoogleBooks adapts the Google Books volumes API.
type GoogleBooks struct {
	client volumesClient
}

func NewGoogleBooks(client *googlebooks.Client) *GoogleBooks {
	return &GoogleBooks{client: client}
}

func (p *GoogleBooks) Search(ctx context.Context, query string, maxResults int) ([]Candidate, error) {
	q := NormalizeQuery(query)
	if q == "" {
		return nil, ErrEmptyQuery
	}
	res, err := p.client.Volumes(ctx, q, ClampMaxResults(maxResults))
	if err != nil {
		return nil, err
	}

	out := make([]Candidate, 0, len(res.Items))
	for i, v := range res.Items {
		info := v.VolumeInfo
		id := v.ID
		if id == "" {
			id = fmt.Sprintf("googlebooks-%d", i)
		}
		image := info.ImageLinks.Thumbnail
		if image == "" {
			image = info.ImageLinks.SmallThumbnail
		}
		out = append(out, Candidate{
			ID:            id,
			Title:         strings.TrimSpace(info.Title),
			Authors:       nonNil(info.Authors),
			Image:         secureURL(image),
			PublishedDate: strings.TrimSpace(info.PublishedDate),
			Description:   info.Description,
		})
	}
	return out, nil
}

// Google serves thumbnails over plain http even though https works.
func secureURL(u string) string {
	if rest, ok := strings.CutPrefix(u, "http://"); ok {
		return "https://" + rest
	}
	return u
}
