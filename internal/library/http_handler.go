package library

import (
	"errors"
	"net/http"
	"strconv"

	"bookshelf/internal/httpx"
	"bookshelf/internal/rating"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// EntryView is an entry as the client sees it, with the rating on both scales.
type EntryView struct {
	Entry
	Stars       *float64 `json:"stars"`
	RatingLabel string   `json:"rating_label"`
}

func NewEntryView(e Entry) EntryView {
	return EntryView{
		Entry:       e,
		Stars:       rating.StorageToUI(e.Rating),
		RatingLabel: rating.Format(e.Rating),
	}
}

type statusReq struct {
	Status string `json:"status" validate:"required,shelf"`
}

type ratingReq struct {
	Stars *float64 `json:"stars" validate:"omitempty,gte=0,lte=5,quarterstep"`
}

type reviewReq struct {
	Review *string `json:"review" validate:"omitempty,max=10000"`
}

// List godoc
// @Summary List the caller's library
// @Tags library
// @Produce json
// @Param status query string false "to_read, reading or read"
// @Param limit query int false "page size"
// @Param offset query int false "offset"
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/me/library [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.RequireUser(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	f := Filter{UserID: userID}
	if raw := query.Get("status"); raw != "" {
		status, err := ParseStatus(raw)
		if err != nil {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "status must be one of to_read, reading, read", nil)
			return
		}
		f.Status = status
	}

	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, _ := strconv.Atoi(query.Get("offset"))
	if offset < 0 {
		offset = 0
	}
	f.Limit = limit
	f.Offset = offset

	entries, err := h.service.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]EntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, NewEntryView(e))
	}
	httpx.JSONSuccess(w, r, views, map[string]any{
		"limit":  limit,
		"offset": offset,
		"count":  len(views),
	})
}

// Get handles GET /v1/me/library/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.RequireUser(w, r)
	if !ok {
		return
	}
	e, err := h.service.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, NewEntryView(e), nil)
}

// UpdateStatus godoc
// @Summary Move an entry to another shelf
// @Tags library
// @Accept json
// @Produce json
// @Param id path string true "entry id"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/me/library/{id}/status [patch]
func (h *HTTPHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.RequireUser(w, r)
	if !ok {
		return
	}
	var req statusReq
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	status, err := ParseStatus(req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}

	e, err := h.service.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.service.Transition(r.Context(), e, status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, NewEntryView(updated), nil)
}

// UpdateRating godoc
// @Summary Set or clear the star rating of an entry
// @Description stars is on the 0-5 display scale in quarter steps; null clears the rating.
// @Tags library
// @Accept json
// @Produce json
// @Param id path string true "entry id"
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/me/library/{id}/rating [put]
func (h *HTTPHandler) UpdateRating(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.RequireUser(w, r)
	if !ok {
		return
	}
	var req ratingReq
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	e, err := h.service.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.service.SetRating(r.Context(), e, req.Stars)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, NewEntryView(updated), nil)
}

// UpdateReview handles PUT /v1/me/library/{id}/review. A null or blank review clears it.
func (h *HTTPHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.RequireUser(w, r)
	if !ok {
		return
	}
	var req reviewReq
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	e, err := h.service.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.service.SetReview(r.Context(), e, req.Review)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, NewEntryView(updated), nil)
}

// Delete handles DELETE /v1/me/library/{id}
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.RequireUser(w, r)
	if !ok {
		return
	}
	if err := h.service.Remove(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccessNoContent(w)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var pe *PersistenceError
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Library entry not found", nil)
	case errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidPatch),
		errors.Is(err, ErrTransitionNotAllowed),
		errors.Is(err, rating.ErrInvalidRating):
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	case errors.As(err, &pe):
		httpx.JSONError(w, r, http.StatusInternalServerError, "PERSISTENCE_ERROR", "Could not save your library", nil)
	default:
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}
