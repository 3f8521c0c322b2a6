package library

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bookshelf/internal/rating"
)

var ErrTransitionNotAllowed = errors.New("status transition not allowed")

// Service owns every mutation of library entries after creation.
type Service struct {
	repo   Repository
	memory *Memory
}

func NewService(repo Repository, memory *Memory) *Service {
	return &Service{repo: repo, memory: memory}
}

func (s *Service) List(ctx context.Context, f Filter) ([]Entry, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, f.Status)
	}
	entries, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, persistenceErr("list", err)
	}
	return entries, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (Entry, error) {
	e, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return Entry{}, persistenceErr("get", err)
	}
	return e, nil
}

// Snapshot returns the user's in-memory library.
func (s *Service) Snapshot(ctx context.Context, userID string) ([]Entry, error) {
	return s.memory.Snapshot(ctx, userID)
}

// Create persists a new entry and records it in memory.
func (s *Service) Create(ctx context.Context, e *Entry) error {
	if !e.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, e.Status)
	}
	if e.Type == "" {
		e.Type = TypeBook
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return persistenceErr("create", err)
	}
	s.memory.Put(*e)
	return nil
}

// Transition moves an entry to another shelf.
func (s *Service) Transition(ctx context.Context, e Entry, to Status) (Entry, error) {
	if !to.Valid() {
		return Entry{}, fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	if !CanTransition(e.Status, to) {
		return Entry{}, fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, e.Status, to)
	}
	return s.update(ctx, e, Patch{Status: &to})
}

// SetRating stores a display-scale rating; nil clears it.
func (s *Service) SetRating(ctx context.Context, e Entry, uiStars *float64) (Entry, error) {
	stored, err := rating.UIToStorage(uiStars)
	if err != nil {
		return Entry{}, err
	}
	if stored == nil {
		return s.update(ctx, e, Patch{ClearRating: true})
	}
	return s.update(ctx, e, Patch{Rating: stored})
}

// SetReview stores review text; nil or blank clears it.
func (s *Service) SetReview(ctx context.Context, e Entry, review *string) (Entry, error) {
	if review == nil || strings.TrimSpace(*review) == "" {
		return s.update(ctx, e, Patch{ClearReview: true})
	}
	text := strings.TrimSpace(*review)
	return s.update(ctx, e, Patch{Review: &text})
}

func (s *Service) Remove(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return persistenceErr("delete", err)
	}
	s.memory.Remove(userID, id)
	return nil
}

func (s *Service) update(ctx context.Context, e Entry, p Patch) (Entry, error) {
	if err := p.Validate(); err != nil {
		return Entry{}, err
	}
	updated, err := s.repo.Update(ctx, e.UserID, e.ID, p)
	if err != nil {
		return Entry{}, persistenceErr("update", err)
	}
	s.memory.Put(updated)
	return updated, nil
}
