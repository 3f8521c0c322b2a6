package readingsession

import (
	"errors"
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

type logReq struct {
	BookID  *string `json:"book_id"`
	Date    string  `json:"date" validate:"required,isodate"`
	Minutes int     `json:"minutes" validate:"gte=0,lte=1440"`
	Pages   *int    `json:"pages" validate:"omitempty,gte=0"`
}

// Log godoc
// @Summary Log a reading session
// @Tags sessions
// @Accept json
// @Produce json
// @Security Bearer
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/me/sessions [post]
func (h *HTTPHandler) Log(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.RequireUser(w, r)
	if !ok {
		return
	}
	var req logReq
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	s := &Session{
		UserID:  userID,
		BookID:  req.BookID,
		Date:    req.Date,
		Minutes: req.Minutes,
		Pages:   req.Pages,
	}
	if err := h.service.Log(r.Context(), s); err != nil {
		switch {
		case errors.Is(err, ErrInvalidSession):
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		case errors.Is(err, ErrBookNotFound):
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found in your library", nil)
		default:
			log.Printf("session log failed: user_id=%s error=%v", userID, err)
			httpx.JSONError(w, r, http.StatusInternalServerError, "PERSISTENCE_ERROR", "Could not save the session", nil)
		}
		return
	}
	httpx.JSONSuccessCreated(w, r, s)
}

// List godoc
// @Summary List reading sessions, newest first
// @Tags sessions
// @Produce json
// @Security Bearer
// @Param cursor query string false "cursor from the previous page"
// @Param limit query int false "page size (default 50, max 200)"
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/me/sessions [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.RequireUser(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	after, err := DecodeCursor(query.Get("cursor"))
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid cursor", nil)
		return
	}
	limit, _ := strconv.Atoi(query.Get("limit"))

	sessions, next, err := h.service.Page(r.Context(), userID, after, limit)
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	if sessions == nil {
		sessions = []Session{}
	}

	meta := map[string]any{"count": len(sessions)}
	if cursor := EncodeCursor(next); cursor != "" {
		meta["next_cursor"] = cursor
	}
	httpx.JSONSuccess(w, r, sessions, meta)
}
