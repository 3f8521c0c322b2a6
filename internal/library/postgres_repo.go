package library

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// The library_items table predates the book-only schema and keeps the author
// in the generic "creator" column. Translation happens only in this adapter
// and in SQLiteRepo.
const entryColumns = `id::text, user_id, media_type, title, creator, cover_image_url,
	to_char(release_date, 'YYYY-MM-DD'), overview, status, rating::float8, review, created_at, updated_at`

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) Create(ctx context.Context, e *Entry) error {
	const query = `
	INSERT INTO library_items (user_id, media_type, title, creator, cover_image_url, release_date, overview, status, rating, review)
	VALUES ($1, $2, $3, $4, $5, $6::text::date, $7, $8, $9::float8, $10)
	RETURNING id::text, created_at, updated_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.QueryRow(timeoutCtx, query,
		e.UserID,
		e.Type,
		e.Title,
		e.Author,
		e.CoverImageURL,
		e.ReleaseDate,
		e.Overview,
		string(e.Status),
		e.Rating,
		e.Review,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

func (r *PostgresRepo) Get(ctx context.Context, userID, id string) (Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM library_items WHERE user_id = $1 AND id::text = $2`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	e, err := scanEntry(r.db.QueryRow(timeoutCtx, query, userID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}
	return e, nil
}

func (r *PostgresRepo) Update(ctx context.Context, userID, id string, p Patch) (Entry, error) {
	if err := p.Validate(); err != nil {
		return Entry{}, err
	}
	if p.Empty() {
		return r.Get(ctx, userID, id)
	}

	sets := []string{"updated_at = now()"}
	args := []any{userID, id}
	argn := 3

	if p.Status != nil {
		sets = append(sets, fmt.Sprintf("status = $%d", argn))
		args = append(args, string(*p.Status))
		argn++
	}
	if p.ClearRating {
		sets = append(sets, "rating = NULL")
	} else if p.Rating != nil {
		sets = append(sets, fmt.Sprintf("rating = $%d::float8", argn))
		args = append(args, *p.Rating)
		argn++
	}
	if p.ClearReview {
		sets = append(sets, "review = NULL")
	} else if p.Review != nil {
		sets = append(sets, fmt.Sprintf("review = $%d", argn))
		args = append(args, *p.Review)
		argn++
	}

	query := fmt.Sprintf(`UPDATE library_items SET %s WHERE user_id = $1 AND id::text = $2 RETURNING %s`,
		strings.Join(sets, ", "), entryColumns)

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	e, err := scanEntry(r.db.QueryRow(timeoutCtx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}
	return e, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM library_items WHERE user_id = $1 AND id::text = $2`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	result, err := r.db.Exec(timeoutCtx, query, userID, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) List(ctx context.Context, f Filter) ([]Entry, error) {
	clauses := []string{"user_id = $1"}
	args := []any{f.UserID}
	argn := 2

	if f.Status != "" {
		clauses = append(clauses, fmt.Sprintf("status = $%d", argn))
		args = append(args, string(f.Status))
		argn++
	}

	query := fmt.Sprintf(`SELECT %s FROM library_items WHERE %s ORDER BY created_at DESC, id`,
		entryColumns, strings.Join(clauses, " AND "))
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argn, argn+1)
		args = append(args, f.Limit, f.Offset)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanEntry(row pgx.Row) (Entry, error) {
	var (
		e      Entry
		status string
	)
	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.Type,
		&e.Title,
		&e.Author,
		&e.CoverImageURL,
		&e.ReleaseDate,
		&e.Overview,
		&status,
		&e.Rating,
		&e.Review,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	e.Status = Status(status)
	return e, err
}
