package addflow

import (
	"errors"
	"net/http"

	"bookshelf/internal/httpx"
	"bookshelf/internal/library"
)

type HTTPHandler struct {
	sessions *Sessions
}

func NewHTTPHandler(sessions *Sessions) *HTTPHandler {
	return &HTTPHandler{sessions: sessions}
}

// StateView is the add workflow as the client sees it.
type StateView struct {
	State
	Existing *library.EntryView `json:"existing,omitempty"`
	Entry    *library.EntryView `json:"entry,omitempty"`
	Error    string             `json:"error,omitempty"`
}

func newStateView(st State) StateView {
	v := StateView{State: st}
	if st.Existing != nil {
		ev := library.NewEntryView(*st.Existing)
		v.Existing = &ev
	}
	if st.Entry != nil {
		ev := library.NewEntryView(*st.Entry)
		v.Entry = &ev
	}
	if st.Err != nil {
		v.Error = st.Err.Error()
	}
	return v
}

type searchReq struct {
	Query string `json:"query" validate:"required,max=200"`
}

type selectReq struct {
	CandidateID string `json:"candidate_id" validate:"required"`
}

type statusReq struct {
	Status string `json:"status" validate:"required,shelf"`
}

type reviewReq struct {
	Stars  *float64 `json:"stars" validate:"omitempty,gte=0,lte=5,quarterstep"`
	Review *string  `json:"review" validate:"omitempty,max=10000"`
}

func (h *HTTPHandler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	userID, ok := httpx.RequireUser(w, r)
	if !ok {
		return nil, false
	}
	return h.sessions.For(userID), true
}

// Get godoc
// @Summary Current state of the caller's add-book workflow
// @Tags add
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/me/add [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	httpx.JSONSuccess(w, r, newStateView(sess.State()), nil)
}

// Search godoc
// @Summary Search the provider and show results
// @Tags add
// @Accept json
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /v1/me/add/search [post]
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req searchReq
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	st, err := sess.Search(r.Context(), req.Query)
	h.respond(w, r, st, err)
}

// Select handles POST /v1/me/add/select
func (h *HTTPHandler) Select(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req selectReq
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	st, err := sess.Select(req.CandidateID)
	h.respond(w, r, st, err)
}

// ChooseStatus godoc
// @Summary Choose the shelf for the selected book
// @Description "read" moves to rating_review; other shelves save the book right away.
// @Tags add
// @Accept json
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /v1/me/add/status [post]
func (h *HTTPHandler) ChooseStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req statusReq
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	st, err := sess.ChooseStatus(r.Context(), req.Status)
	h.respond(w, r, st, err)
}

// Submit handles POST /v1/me/add/review
func (h *HTTPHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req reviewReq
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	st, err := sess.Submit(r.Context(), req.Stars, req.Review)
	h.respond(w, r, st, err)
}

func (h *HTTPHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	st, err := sess.Acknowledge()
	h.respond(w, r, st, err)
}

func (h *HTTPHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	st, err := sess.Dismiss()
	h.respond(w, r, st, err)
}

func (h *HTTPHandler) Retry(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	st, err := sess.Retry(r.Context())
	h.respond(w, r, st, err)
}

func (h *HTTPHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	st, err := sess.Cancel()
	h.respond(w, r, st, err)
}

// respond writes the state on success. After a failure the client reads the
// phase it landed in from GET /v1/me/add.
func (h *HTTPHandler) respond(w http.ResponseWriter, r *http.Request, st State, err error) {
	if err == nil {
		httpx.JSONSuccess(w, r, newStateView(st), nil)
		return
	}

	var (
		verr *ValidationError
		nerr *NetworkError
		perr *library.PersistenceError
	)
	switch {
	case errors.Is(err, ErrBusy), errors.Is(err, ErrStale):
		httpx.JSONError(w, r, http.StatusConflict, "CONFLICT", err.Error(), nil)
	case errors.As(err, &verr):
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error(), nil)
	case errors.As(err, &nerr):
		httpx.JSONError(w, r, http.StatusBadGateway, "SEARCH_FAILED", st.Message, nil)
	case errors.As(err, &perr):
		httpx.JSONError(w, r, http.StatusInternalServerError, "PERSISTENCE_ERROR", st.Message, nil)
	default:
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}
