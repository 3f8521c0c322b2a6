package addflow

import (
	"context"
	"log"
	"sync"
	"time"

	"bookshelf/internal/library"
)

// Snapshotter supplies the in-memory library used for duplicate checks.
type Snapshotter interface {
	Snapshot(ctx context.Context, userID string) ([]library.Entry, error)
}

// Session owns one user's workflow state. Only one persist may be in flight;
// a running search is abandoned when the user cancels or starts over.
type Session struct {
	mu       sync.Mutex
	wf       *Workflow
	lib      Snapshotter
	state    State
	busy     bool
	gen      uint64
	stopScan context.CancelFunc
	lastSeen time.Time
}

func NewSession(userID string, wf *Workflow, lib Snapshotter) *Session {
	return &Session{
		wf:       wf,
		lib:      lib,
		state:    NewState(userID),
		lastSeen: time.Now(),
	}
}

// State returns the current state. While a persist runs the phase reads
// Persisting.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) touch() {
	s.lastSeen = time.Now()
}

// Search starts a provider search. If the session changes before the
// provider answers, the answer is dropped and ErrStale returned.
func (s *Session) Search(ctx context.Context, query string) (State, error) {
	s.mu.Lock()
	s.touch()
	if s.busy {
		st := s.state
		s.mu.Unlock()
		return st, &ValidationError{Op: "search", Msg: ErrBusy.Error(), Err: ErrBusy}
	}
	next, err := s.wf.StartSearch(s.state, query)
	if err != nil {
		st := s.state
		s.mu.Unlock()
		return st, err
	}
	s.abandonSearch()
	searchCtx, cancel := context.WithCancel(ctx)
	s.stopScan = cancel
	s.gen++
	gen := s.gen
	s.state = next
	s.mu.Unlock()

	results, fetchErr := s.wf.fetch(searchCtx, next.Query)

	s.mu.Lock()
	defer s.mu.Unlock()
	cancel()
	if s.gen != gen {
		return s.state, ErrStale
	}
	s.stopScan = nil
	s.state, err = s.wf.FinishSearch(s.state, results, fetchErr)
	return s.state, err
}

func (s *Session) Select(candidateID string) (State, error) {
	return s.apply(func(st State) (State, error) {
		return s.wf.Select(st, candidateID)
	})
}

func (s *Session) Acknowledge() (State, error) {
	return s.apply(s.wf.Acknowledge)
}

func (s *Session) Dismiss() (State, error) {
	return s.apply(s.wf.Dismiss)
}

// Cancel returns to Idle from anywhere except an in-flight persist.
func (s *Session) Cancel() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if s.busy {
		return s.state, &ValidationError{Op: "cancel", Msg: ErrBusy.Error(), Err: ErrBusy}
	}
	next, err := s.wf.Cancel(s.state)
	if err != nil {
		return s.state, err
	}
	s.abandonSearch()
	s.gen++
	s.state = next
	return s.state, nil
}

func (s *Session) ChooseStatus(ctx context.Context, status string) (State, error) {
	return s.persistAfter(ctx, func(st State) (State, error) {
		return s.wf.PickStatus(st, status)
	})
}

func (s *Session) Submit(ctx context.Context, stars *float64, review *string) (State, error) {
	return s.persistAfter(ctx, func(st State) (State, error) {
		return s.wf.PrepareSubmit(st, stars, review)
	})
}

func (s *Session) Retry(ctx context.Context) (State, error) {
	return s.persistAfter(ctx, s.wf.PrepareRetry)
}

// apply runs a transition that performs no I/O.
func (s *Session) apply(fn func(State) (State, error)) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if s.busy {
		return s.state, &ValidationError{Op: "transition", Msg: ErrBusy.Error(), Err: ErrBusy}
	}
	next, err := fn(s.state)
	if err != nil {
		return s.state, err
	}
	s.state = next
	return s.state, nil
}

// persistAfter runs a pure step and, when it lands in Persisting, the
// duplicate check and create call outside the lock. The persist ignores
// caller cancellation so it always reaches Done, DuplicateBlocked or Failed.
func (s *Session) persistAfter(ctx context.Context, prepare func(State) (State, error)) (State, error) {
	s.mu.Lock()
	s.touch()
	if s.busy {
		st := s.state
		s.mu.Unlock()
		return st, &ValidationError{Op: "persist", Msg: ErrBusy.Error(), Err: ErrBusy}
	}
	next, err := prepare(s.state)
	if err != nil {
		st := s.state
		s.mu.Unlock()
		return st, err
	}
	s.state = next
	if next.Phase != PhasePersisting {
		s.mu.Unlock()
		return next, nil
	}
	s.busy = true
	s.mu.Unlock()

	persistCtx := context.WithoutCancel(ctx)
	var (
		out        State
		persistErr error
	)
	lib, err := s.lib.Snapshot(persistCtx, next.UserID)
	if err != nil {
		persistErr = asPersistenceError(err)
		out = failed(next, persistErr)
	} else {
		out, persistErr = s.wf.Persist(persistCtx, next, lib)
	}
	if persistErr != nil {
		log.Printf("addflow persist failed: user_id=%s title=%q error=%v", next.UserID, next.Candidate.Title, persistErr)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = out
	s.busy = false
	return s.state, persistErr
}

func (s *Session) abandonSearch() {
	if s.stopScan != nil {
		s.stopScan()
		s.stopScan = nil
	}
}

// Sessions hands out one Session per user and forgets idle ones.
type Sessions struct {
	mu      sync.Mutex
	byUser  map[string]*Session
	wf      *Workflow
	lib     Snapshotter
	idleTTL time.Duration
}

// NewSessions starts a janitor that runs until ctx is done.
func NewSessions(ctx context.Context, wf *Workflow, lib Snapshotter, idleTTL time.Duration) *Sessions {
	s := &Sessions{
		byUser:  make(map[string]*Session),
		wf:      wf,
		lib:     lib,
		idleTTL: idleTTL,
	}
	if idleTTL > 0 {
		go s.cleanup(ctx)
	}
	return s
}

func (s *Sessions) For(userID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byUser[userID]
	if !ok {
		sess = NewSession(userID, s.wf, s.lib)
		s.byUser[userID] = sess
	}
	return sess
}

func (s *Sessions) cleanup(ctx context.Context) {
	ticker := time.NewTicker(s.idleTTL)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.prune(time.Now().Add(-s.idleTTL))
		}
	}
}

// prune drops sessions unused since cutoff. Busy sessions are kept.
func (s *Sessions) prune(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for userID, sess := range s.byUser {
		sess.mu.Lock()
		stale := !sess.busy && sess.lastSeen.Before(cutoff)
		sess.mu.Unlock()
		if stale {
			delete(s.byUser, userID)
			removed++
		}
	}
	return removed
}
