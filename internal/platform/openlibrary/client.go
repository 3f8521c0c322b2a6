package openlibrary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL  = "https://openlibrary.org"
	defaultCoverURL = "https://covers.openlibrary.org"
	searchFields    = "key,title,author_name,cover_i,first_publish_year,publish_date,first_sentence,subtitle"
)

// StatusError is returned for any non-200 answer. Calls are never retried.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("openlibrary: unexpected status code: %d", e.Code)
}

var ErrEmptyQuery = errors.New("openlibrary: empty query")

type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	coverURL   string
	limiter    *rate.Limiter
}

// NewClient paces outgoing requests to rps. Open Library asks clients to
// identify themselves through the User-Agent.
func NewClient(userAgent string, rps float64) *Client {
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		userAgent: userAgent,
		baseURL:   defaultBaseURL,
		coverURL:  defaultCoverURL,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// SearchResponse matches search.json
type SearchResponse struct {
	NumFound int   `json:"numFound"`
	Docs     []Doc `json:"docs"`
}

type Doc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	Subtitle         string   `json:"subtitle"`
	AuthorNames      []string `json:"author_name"`
	CoverID          int      `json:"cover_i"`
	FirstPublishYear int      `json:"first_publish_year"`
	PublishDate      []string `json:"publish_date"`
	FirstSentence    []string `json:"first_sentence"`
}

// Search runs a free-text query against search.json.
func (c *Client) Search(ctx context.Context, query string, limit int) (*SearchResponse, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("fields", searchFields)
	params.Set("limit", strconv.Itoa(limit))

	var res SearchResponse
	if err := c.get(ctx, c.baseURL+"/search.json?"+params.Encode(), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CoverURL returns the medium cover image for a cover id, or "" when absent.
func (c *Client) CoverURL(coverID int) string {
	if coverID <= 0 {
		return ""
	}
	return fmt.Sprintf("%s/b/id/%d-M.jpg", c.coverURL, coverID)
}

func (c *Client) get(ctx context.Context, url string, target any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("openlibrary: decode response: %w", err)
	}
	return nil
}
