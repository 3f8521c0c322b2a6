package readingsession

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"bookshelf/internal/library"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
	// MaxMinutes is one full day.
	MaxMinutes = 24 * 60
)

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func validDate(s string) bool {
	if !dateRe.MatchString(s) {
		return false
	}
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

// BookLookup confirms that a session's book belongs to the user.
type BookLookup interface {
	Get(ctx context.Context, userID, id string) (library.Entry, error)
}

type Service struct {
	repo  Repository
	books BookLookup
	now   func() time.Time
}

func NewService(repo Repository, books BookLookup) *Service {
	return &Service{repo: repo, books: books, now: time.Now}
}

// Log validates and appends a session. A blank book id is stored as null.
func (s *Service) Log(ctx context.Context, sess *Session) error {
	if err := s.validate(sess); err != nil {
		return err
	}
	if sess.BookID != nil {
		id := strings.TrimSpace(*sess.BookID)
		if id == "" {
			sess.BookID = nil
		} else {
			sess.BookID = &id
			if _, err := s.books.Get(ctx, sess.UserID, id); err != nil {
				if errors.Is(err, library.ErrNotFound) {
					return ErrBookNotFound
				}
				return err
			}
		}
	}
	return s.repo.Create(ctx, sess)
}

func (s *Service) validate(sess *Session) error {
	if sess.UserID == "" {
		return fmt.Errorf("%w: user is required", ErrInvalidSession)
	}
	if !validDate(sess.Date) {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidSession)
	}
	// one day of slack for clients ahead of the server's timezone
	if sess.Date > s.now().AddDate(0, 0, 1).Format(time.DateOnly) {
		return fmt.Errorf("%w: date is in the future", ErrInvalidSession)
	}
	if sess.Minutes < 0 || sess.Minutes > MaxMinutes {
		return fmt.Errorf("%w: minutes must be between 0 and %d", ErrInvalidSession, MaxMinutes)
	}
	if sess.Pages != nil && *sess.Pages < 0 {
		return fmt.Errorf("%w: pages must not be negative", ErrInvalidSession)
	}
	return nil
}

// Page returns one page of sessions and the cursor for the next one.
func (s *Service) Page(ctx context.Context, userID string, after Cursor, limit int) ([]Session, Cursor, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	sessions, err := s.repo.ListByUser(ctx, ListQuery{UserID: userID, After: after, Limit: limit + 1})
	if err != nil {
		return nil, Cursor{}, err
	}
	var next Cursor
	if len(sessions) > limit {
		sessions = sessions[:limit]
		last := sessions[limit-1]
		next = Cursor{Date: last.Date, ID: last.ID}
	}
	return sessions, next, nil
}

// Since returns every session dated on or after since.
func (s *Service) Since(ctx context.Context, userID, since string) ([]Session, error) {
	return s.repo.ListByUser(ctx, ListQuery{UserID: userID, Since: since})
}
