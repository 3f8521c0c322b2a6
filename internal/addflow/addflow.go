package addflow

import (
	"errors"
	"fmt"

	"bookshelf/internal/library"
	"bookshelf/internal/search"
)

// Phase is the workflow's current step.
type Phase string

const (
	PhaseIdle             Phase = "idle"
	PhaseSearching        Phase = "searching"
	PhaseResultsShown     Phase = "results_shown"
	PhaseStatusSelection  Phase = "status_selection"
	PhaseRatingReview     Phase = "rating_review"
	PhaseDuplicateBlocked Phase = "duplicate_blocked"
	PhasePersisting       Phase = "persisting"
	PhaseDone             Phase = "done"
	PhaseFailed           Phase = "failed"
)

// State is passed into and returned from every transition. Fields that do not
// belong to the current phase are zero.
type State struct {
	UserID    string             `json:"-"`
	Phase     Phase              `json:"phase"`
	Query     string             `json:"query,omitempty"`
	Results   []search.Candidate `json:"results,omitempty"`
	Candidate *search.Candidate  `json:"candidate,omitempty"`
	Status    library.Status     `json:"status,omitempty"`
	// Stars is the display-scale rating chosen during review.
	Stars    *float64       `json:"stars,omitempty"`
	Review   *string        `json:"review,omitempty"`
	Existing *library.Entry `json:"existing,omitempty"`
	Entry    *library.Entry `json:"entry,omitempty"`
	// Resume is the interactive phase a failed persist returns to.
	Resume  Phase  `json:"resume,omitempty"`
	Message string `json:"message,omitempty"`
	Err     error  `json:"-"`
}

// NewState returns the idle state for a user.
func NewState(userID string) State {
	return State{UserID: userID, Phase: PhaseIdle}
}

var (
	// ErrBusy is returned while a persist is in flight for the same session.
	ErrBusy = errors.New("a library add is already in progress")
	// ErrStale is returned when the session moved on while a search was running.
	ErrStale = errors.New("workflow changed while the search was running")
)

// ValidationError blocks a transition and leaves the state unchanged.
type ValidationError struct {
	Op  string
	Msg string
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(op string, format string, args ...any) error {
	return &ValidationError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

func wrongPhase(op string, p Phase) error {
	return &ValidationError{Op: op, Msg: fmt.Sprintf("not allowed in phase %s", p)}
}

// NetworkError reports a failed search call. It is never retried.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("search failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
