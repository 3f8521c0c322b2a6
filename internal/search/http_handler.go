package search

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"bookshelf/internal/httpx"
)

type HTTPHandler struct {
	provider Provider
}

func NewHTTPHandler(provider Provider) *HTTPHandler {
	return &HTTPHandler{provider: provider}
}

// Search godoc
// @Summary Search the configured book provider
// @Tags search
// @Produce json
// @Param q query string true "free-text query"
// @Param limit query int false "max results (default 10, max 40)"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /v1/search [get]
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := NormalizeQuery(query.Get("q"))
	if q == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", []httpx.ErrorDetail{
			{Field: "q", Message: "q is required"},
		})
		return
	}
	limit, _ := strconv.Atoi(query.Get("limit"))
	limit = ClampMaxResults(limit)

	results, err := h.provider.Search(r.Context(), q, limit)
	if err != nil {
		if errors.Is(err, ErrEmptyQuery) {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}
		log.Printf("search failed: request_id=%s error=%v", httpx.RequestIDFrom(r), err)
		httpx.JSONError(w, r, http.StatusBadGateway, "SEARCH_FAILED", "Search provider unavailable", nil)
		return
	}

	httpx.JSONSuccess(w, r, results, map[string]any{
		"query": q,
		"count": len(results),
	})
}
