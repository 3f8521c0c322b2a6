package stats

import (
	"log"
	"net/http"
	"strconv"

	"bookshelf/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// Get handles GET /v1/me/stats
// @Summary Reading progress dashboard
// @Description Heatmap, weekly totals, streak and shelf counts for the authenticated user
// @Tags stats
// @Produce json
// @Security Bearer
// @Param window_days query int false "heatmap window in days (default 84)"
// @Param weeks query int false "number of weekly totals (default 8)"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /v1/me/stats [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.RequireUser(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	windowDays, err := optionalInt(query.Get("window_days"))
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "window_days must be a positive integer", nil)
		return
	}
	weeks, err := optionalInt(query.Get("weeks"))
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "weeks must be a positive integer", nil)
		return
	}

	d, err := h.service.Dashboard(r.Context(), userID, windowDays, weeks)
	if err != nil {
		log.Printf("stats dashboard failed: user_id=%s error=%v", userID, err)
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, r, d, nil)
}

func optionalInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}
