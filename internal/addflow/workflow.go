package addflow

import (
	"context"
	"errors"
	"strings"

	"bookshelf/internal/library"
	"bookshelf/internal/rating"
	"bookshelf/internal/search"
)

// Creator persists a new library entry.
type Creator interface {
	Create(ctx context.Context, e *library.Entry) error
}

// Workflow holds the collaborators; all state lives in State values.
type Workflow struct {
	provider   search.Provider
	creator    Creator
	maxResults int
}

func NewWorkflow(provider search.Provider, creator Creator) *Workflow {
	return &Workflow{
		provider:   provider,
		creator:    creator,
		maxResults: search.DefaultMaxResults,
	}
}

// WithMaxResults changes the page size requested from the provider.
func (w *Workflow) WithMaxResults(n int) *Workflow {
	w.maxResults = search.ClampMaxResults(n)
	return w
}

// Search runs StartSearch, the provider call and FinishSearch in one go.
func (w *Workflow) Search(ctx context.Context, st State, query string) (State, error) {
	next, err := w.StartSearch(st, query)
	if err != nil {
		return st, err
	}
	results, err := w.fetch(ctx, next.Query)
	return w.FinishSearch(next, results, err)
}

// StartSearch moves to Searching.
func (w *Workflow) StartSearch(st State, query string) (State, error) {
	switch st.Phase {
	case PhaseIdle, PhaseResultsShown, PhaseDone:
	default:
		return st, wrongPhase("search", st.Phase)
	}
	q := search.NormalizeQuery(query)
	if q == "" {
		return st, invalid("search", "query is required")
	}
	return State{UserID: st.UserID, Phase: PhaseSearching, Query: q}, nil
}

func (w *Workflow) fetch(ctx context.Context, query string) ([]search.Candidate, error) {
	return w.provider.Search(ctx, query, w.maxResults)
}

// FinishSearch applies a provider outcome. A failure lands in Idle with an
// empty result set and the NetworkError both in the state and returned.
func (w *Workflow) FinishSearch(st State, results []search.Candidate, err error) (State, error) {
	if st.Phase != PhaseSearching {
		return st, wrongPhase("search", st.Phase)
	}
	if err != nil {
		nerr := &NetworkError{Err: err}
		return State{
			UserID:  st.UserID,
			Phase:   PhaseIdle,
			Query:   st.Query,
			Results: []search.Candidate{},
			Message: "Search is unavailable right now. Try again.",
			Err:     nerr,
		}, nerr
	}
	if results == nil {
		results = []search.Candidate{}
	}
	return State{UserID: st.UserID, Phase: PhaseResultsShown, Query: st.Query, Results: results}, nil
}

// Select picks a candidate from the shown results.
func (w *Workflow) Select(st State, candidateID string) (State, error) {
	if st.Phase != PhaseResultsShown {
		return st, wrongPhase("select", st.Phase)
	}
	for _, c := range st.Results {
		if c.ID == candidateID {
			c := c
			return State{
				UserID:    st.UserID,
				Phase:     PhaseStatusSelection,
				Query:     st.Query,
				Results:   st.Results,
				Candidate: &c,
			}, nil
		}
	}
	return st, invalid("select", "unknown candidate %q", candidateID)
}

// PickStatus is the pure half of ChooseStatus. "read" asks for a rating and
// review first; any other shelf goes straight to Persisting.
func (w *Workflow) PickStatus(st State, raw string) (State, error) {
	if !resumable(st, PhaseStatusSelection) {
		return st, wrongPhase("choose status", st.Phase)
	}
	if st.Candidate == nil {
		return st, invalid("choose status", "no candidate selected")
	}
	status, err := library.ParseStatus(raw)
	if err != nil {
		return st, &ValidationError{Op: "choose status", Msg: "status must be one of to_read, reading, read", Err: err}
	}

	next := pending(st)
	next.Status = status
	next.Stars = nil
	next.Review = nil
	if status == library.StatusRead {
		next.Phase = PhaseRatingReview
		return next, nil
	}
	next.Phase = PhasePersisting
	next.Resume = PhaseStatusSelection
	return next, nil
}

// ChooseStatus picks a shelf and persists immediately unless the shelf is "read".
func (w *Workflow) ChooseStatus(ctx context.Context, st State, status string, lib []library.Entry) (State, error) {
	next, err := w.PickStatus(st, status)
	if err != nil || next.Phase != PhasePersisting {
		return next, err
	}
	return w.Persist(ctx, next, lib)
}

// PrepareSubmit is the pure half of Submit. stars is on the display scale.
func (w *Workflow) PrepareSubmit(st State, stars *float64, review *string) (State, error) {
	if !resumable(st, PhaseRatingReview) {
		return st, wrongPhase("submit", st.Phase)
	}
	if st.Candidate == nil {
		return st, invalid("submit", "no candidate selected")
	}
	if _, err := rating.UIToStorage(stars); err != nil {
		return st, &ValidationError{Op: "submit", Msg: "rating must be 0-5 in steps of 0.25", Err: err}
	}

	next := pending(st)
	next.Phase = PhasePersisting
	next.Resume = PhaseRatingReview
	next.Status = library.StatusRead
	next.Stars = copyFloat(stars)
	next.Review = cleanReview(review)
	return next, nil
}

// Submit records rating and review for a "read" book and persists it.
func (w *Workflow) Submit(ctx context.Context, st State, lib []library.Entry, stars *float64, review *string) (State, error) {
	next, err := w.PrepareSubmit(st, stars, review)
	if err != nil {
		return st, err
	}
	return w.Persist(ctx, next, lib)
}

// Persist checks lib for a duplicate and otherwise creates the entry.
// A duplicate is not an error: the state becomes DuplicateBlocked.
func (w *Workflow) Persist(ctx context.Context, st State, lib []library.Entry) (State, error) {
	if st.Phase != PhasePersisting {
		return st, wrongPhase("persist", st.Phase)
	}
	if st.Candidate == nil {
		return st, invalid("persist", "no candidate selected")
	}

	if existing, ok := library.FindDuplicate(lib, st.Candidate.Title, st.Candidate.FirstAuthor()); ok {
		return State{
			UserID:    st.UserID,
			Phase:     PhaseDuplicateBlocked,
			Candidate: st.Candidate,
			Existing:  &existing,
			Message:   "This book is already in your library.",
		}, nil
	}

	entry, err := buildEntry(st)
	if err != nil {
		return failed(st, err), err
	}
	if err := w.creator.Create(ctx, &entry); err != nil {
		perr := asPersistenceError(err)
		return failed(st, perr), perr
	}
	return State{UserID: st.UserID, Phase: PhaseDone, Entry: &entry}, nil
}

// Acknowledge leaves DuplicateBlocked or Done.
func (w *Workflow) Acknowledge(st State) (State, error) {
	switch st.Phase {
	case PhaseDuplicateBlocked, PhaseDone:
		return NewState(st.UserID), nil
	default:
		return st, wrongPhase("acknowledge", st.Phase)
	}
}

// Cancel drops everything pending. It performs no I/O and is refused only
// while a persist is running.
func (w *Workflow) Cancel(st State) (State, error) {
	if st.Phase == PhasePersisting {
		return st, &ValidationError{Op: "cancel", Msg: ErrBusy.Error(), Err: ErrBusy}
	}
	return NewState(st.UserID), nil
}

// Dismiss returns from Failed to the phase the user was in, selections intact.
func (w *Workflow) Dismiss(st State) (State, error) {
	if st.Phase != PhaseFailed {
		return st, wrongPhase("dismiss", st.Phase)
	}
	next := pending(st)
	next.Phase = st.Resume
	if next.Phase == PhaseStatusSelection {
		next.Status = ""
	}
	return next, nil
}

// PrepareRetry is the pure half of Retry.
func (w *Workflow) PrepareRetry(st State) (State, error) {
	if st.Phase != PhaseFailed {
		return st, wrongPhase("retry", st.Phase)
	}
	next := pending(st)
	next.Phase = PhasePersisting
	next.Resume = st.Resume
	return next, nil
}

// Retry runs the failed persist again with the preserved selections.
func (w *Workflow) Retry(ctx context.Context, st State, lib []library.Entry) (State, error) {
	next, err := w.PrepareRetry(st)
	if err != nil {
		return st, err
	}
	return w.Persist(ctx, next, lib)
}

func resumable(st State, phase Phase) bool {
	return st.Phase == phase || (st.Phase == PhaseFailed && st.Resume == phase)
}

// pending copies the selections carried between interactive phases.
func pending(st State) State {
	return State{
		UserID:    st.UserID,
		Query:     st.Query,
		Results:   st.Results,
		Candidate: st.Candidate,
		Status:    st.Status,
		Stars:     st.Stars,
		Review:    st.Review,
		Resume:    st.Resume,
	}
}

func failed(st State, err error) State {
	next := pending(st)
	next.Phase = PhaseFailed
	next.Err = err
	next.Message = "Could not save the book. Your selections are kept; try again."
	return next
}

func buildEntry(st State) (library.Entry, error) {
	stored, err := rating.UIToStorage(st.Stars)
	if err != nil {
		return library.Entry{}, &ValidationError{Op: "persist", Msg: err.Error(), Err: err}
	}
	c := st.Candidate
	return library.Entry{
		UserID:        st.UserID,
		Type:          library.TypeBook,
		Title:         c.Title,
		Author:        c.FirstAuthor(),
		CoverImageURL: c.Image,
		ReleaseDate:   library.NormalizeReleaseDate(c.PublishedDate),
		Overview:      c.Description,
		Status:        st.Status,
		Rating:        stored,
		Review:        copyString(st.Review),
	}, nil
}

func asPersistenceError(err error) error {
	var pe *library.PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &library.PersistenceError{Op: "create", Err: err}
}

func cleanReview(review *string) *string {
	if review == nil {
		return nil
	}
	text := strings.TrimSpace(*review)
	if text == "" {
		return nil
	}
	return &text
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
