package library

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TypeBook is the only media type handled by the library today.
const TypeBook = "book"

var (
	// ErrNotFound is returned when an entry does not exist for the user.
	ErrNotFound = errors.New("library entry not found")
	// ErrInvalidStatus is returned for statuses outside the shelf set.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidPatch is returned when a patch sets and clears the same field.
	ErrInvalidPatch = errors.New("invalid patch")
)

// Entry is a book on a user's shelf.
type Entry struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Type          string    `json:"type"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	CoverImageURL string    `json:"cover_image_url"`
	ReleaseDate   *string   `json:"release_date"`
	Overview      string    `json:"overview"`
	Status        Status    `json:"status"`
	Rating        *float64  `json:"rating"`
	Review        *string   `json:"review"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Patch describes a partial update. Nil pointers leave the column untouched;
// the Clear flags null the column out.
type Patch struct {
	Status      *Status
	Rating      *float64
	ClearRating bool
	Review      *string
	ClearReview bool
}

func (p Patch) Validate() error {
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, *p.Status)
	}
	if p.ClearRating && p.Rating != nil {
		return fmt.Errorf("%w: rating both set and cleared", ErrInvalidPatch)
	}
	if p.ClearReview && p.Review != nil {
		return fmt.Errorf("%w: review both set and cleared", ErrInvalidPatch)
	}
	return nil
}

// Empty reports whether the patch would change nothing.
func (p Patch) Empty() bool {
	return p.Status == nil && p.Rating == nil && !p.ClearRating && p.Review == nil && !p.ClearReview
}

// Apply returns a copy of e with the patch applied.
func (p Patch) Apply(e Entry) Entry {
	if p.Status != nil {
		e.Status = *p.Status
	}
	switch {
	case p.ClearRating:
		e.Rating = nil
	case p.Rating != nil:
		v := *p.Rating
		e.Rating = &v
	}
	switch {
	case p.ClearReview:
		e.Review = nil
	case p.Review != nil:
		v := *p.Review
		e.Review = &v
	}
	return e
}

// Filter narrows List results. Zero Limit means no limit.
type Filter struct {
	UserID string
	Status Status
	Limit  int
	Offset int
}

//go:generate mockgen -source=library.go -destination=mock_repository.go -package=library Repository

// Repository is the persistence collaborator for library entries.
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	Get(ctx context.Context, userID, id string) (Entry, error)
	Update(ctx context.Context, userID, id string, p Patch) (Entry, error)
	Delete(ctx context.Context, userID, id string) error
	List(ctx context.Context, f Filter) ([]Entry, error)
}

// PersistenceError wraps a failed repository call.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistenceErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
