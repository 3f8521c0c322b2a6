package openlibrary

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient("bookshelf-test", 100)
	c.baseURL = srv.URL
	return c
}

func TestClient_Search(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		assert.Equal(t, "dune herbert", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "bookshelf-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"numFound":1,"docs":[{"key":"/works/OL893415W","title":"Dune","author_name":["Frank Herbert"],"cover_i":11481354,"first_publish_year":1965,"first_sentence":["In the week before their departure to Arrakis..."]}]}`))
	})

	res, err := c.Search(context.Background(), "dune herbert", 5)
	require.NoError(t, err)
	require.Len(t, res.Docs, 1)
	doc := res.Docs[0]
	assert.Equal(t, "Dune", doc.Title)
	assert.Equal(t, []string{"Frank Herbert"}, doc.AuthorNames)
	assert.Equal(t, 1965, doc.FirstPublishYear)
	assert.Equal(t, 11481354, doc.CoverID)
}

func TestClient_Search_StatusError(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.Search(context.Background(), "dune", 5)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
	assert.Equal(t, 1, calls, "failed calls must not be retried")
}

func TestClient_Search_BadJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"docs":`))
	})

	_, err := c.Search(context.Background(), "dune", 5)
	assert.Error(t, err)
}

func TestClient_Search_EmptyQuery(t *testing.T) {
	c := NewClient("ua", 1)
	_, err := c.Search(context.Background(), "", 5)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestClient_Search_CanceledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent")
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Search(ctx, "dune", 5)
	assert.Error(t, err)
}

func TestClient_CoverURL(t *testing.T) {
	c := NewClient("ua", 1)
	assert.Equal(t, "https://covers.openlibrary.org/b/id/42-M.jpg", c.CoverURL(42))
	assert.Equal(t, "", c.CoverURL(0))
}
