package readingsession

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidSession = errors.New("invalid reading session")
	ErrBookNotFound   = errors.New("book not found in library")
	ErrInvalidCursor  = errors.New("invalid cursor")
)

// Session is an immutable log of time spent reading on one day.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	BookID    *string   `json:"book_id"`
	Date      string    `json:"date"`
	Minutes   int       `json:"minutes"`
	Pages     *int      `json:"pages"`
	CreatedAt time.Time `json:"created_at"`
}

// ListQuery selects a user's sessions newest date first. Since is an
// inclusive YYYY-MM-DD lower bound; zero Limit means no limit.
type ListQuery struct {
	UserID string
	Since  string
	After  Cursor
	Limit  int
}

//go:generate mockgen -source=readingsession.go -destination=mock_repository.go -package=readingsession Repository

// Repository is append-only: sessions are never edited or deleted here.
type Repository interface {
	Create(ctx context.Context, s *Session) error
	ListByUser(ctx context.Context, q ListQuery) ([]Session, error)
}
