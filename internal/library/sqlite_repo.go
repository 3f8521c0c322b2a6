package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookshelf/internal/platform/sqlite"

	"github.com/google/uuid"
)

const sqliteEntryColumns = `id, user_id, media_type, title, creator, cover_image_url,
	release_date, overview, status, rating, review, created_at, updated_at`

// SQLiteRepo stores entries in the embedded database used by single-user installs.
type SQLiteRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepo(db *sql.DB) *SQLiteRepo {
	return &SQLiteRepo{db: db, now: time.Now}
}

func (r *SQLiteRepo) Create(ctx context.Context, e *Entry) error {
	const query = `
	INSERT INTO library_items (id, user_id, media_type, title, creator, cover_image_url, release_date, overview, status, rating, review, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id := uuid.NewString()
	now := r.now().UTC()
	_, err := r.db.ExecContext(ctx, query,
		id,
		e.UserID,
		e.Type,
		e.Title,
		e.Author,
		e.CoverImageURL,
		sqlite.NullString(e.ReleaseDate),
		e.Overview,
		string(e.Status),
		sqlite.NullFloat(e.Rating),
		sqlite.NullString(e.Review),
		sqlite.FormatTime(now),
		sqlite.FormatTime(now),
	)
	if err != nil {
		return err
	}
	e.ID = id
	e.CreatedAt = now
	e.UpdatedAt = now
	return nil
}

func (r *SQLiteRepo) Get(ctx context.Context, userID, id string) (Entry, error) {
	query := `SELECT ` + sqliteEntryColumns + ` FROM library_items WHERE user_id = ? AND id = ?`
	e, err := scanSQLiteEntry(r.db.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}
	return e, nil
}

func (r *SQLiteRepo) Update(ctx context.Context, userID, id string, p Patch) (Entry, error) {
	if err := p.Validate(); err != nil {
		return Entry{}, err
	}
	if p.Empty() {
		return r.Get(ctx, userID, id)
	}

	sets := []string{"updated_at = ?"}
	args := []any{sqlite.FormatTime(r.now())}

	if p.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*p.Status))
	}
	if p.ClearRating {
		sets = append(sets, "rating = NULL")
	} else if p.Rating != nil {
		sets = append(sets, "rating = ?")
		args = append(args, *p.Rating)
	}
	if p.ClearReview {
		sets = append(sets, "review = NULL")
	} else if p.Review != nil {
		sets = append(sets, "review = ?")
		args = append(args, *p.Review)
	}
	args = append(args, userID, id)

	query := fmt.Sprintf(`UPDATE library_items SET %s WHERE user_id = ? AND id = ?`, strings.Join(sets, ", "))
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return Entry{}, err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return Entry{}, ErrNotFound
	}
	return r.Get(ctx, userID, id)
}

func (r *SQLiteRepo) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM library_items WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepo) List(ctx context.Context, f Filter) ([]Entry, error) {
	clauses := []string{"user_id = ?"}
	args := []any{f.UserID}
	if f.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(f.Status))
	}

	query := fmt.Sprintf(`SELECT %s FROM library_items WHERE %s ORDER BY created_at DESC, id`,
		sqliteEntryColumns, strings.Join(clauses, " AND "))
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanSQLiteEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteEntry(row rowScanner) (Entry, error) {
	var (
		e                    Entry
		status               string
		releaseDate, review  sql.NullString
		stars                sql.NullFloat64
		createdAt, updatedAt string
	)
	if err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.Type,
		&e.Title,
		&e.Author,
		&e.CoverImageURL,
		&releaseDate,
		&e.Overview,
		&status,
		&stars,
		&review,
		&createdAt,
		&updatedAt,
	); err != nil {
		return Entry{}, err
	}
	e.Status = Status(status)
	if releaseDate.Valid {
		e.ReleaseDate = &releaseDate.String
	}
	if stars.Valid {
		e.Rating = &stars.Float64
	}
	if review.Valid {
		e.Review = &review.String
	}
	var err error
	if e.CreatedAt, err = sqlite.ParseTime(createdAt); err != nil {
		return Entry{}, fmt.Errorf("parse created_at: %w", err)
	}
	if e.UpdatedAt, err = sqlite.ParseTime(updatedAt); err != nil {
		return Entry{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return e, nil
}
