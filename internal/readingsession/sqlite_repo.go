package readingsession

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"bookshelf/internal/platform/sqlite"

	"github.com/google/uuid"
)

type SQLiteRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepo(db *sql.DB) *SQLiteRepo {
	return &SQLiteRepo{db: db, now: time.Now}
}

func (r *SQLiteRepo) Create(ctx context.Context, s *Session) error {
	const query = `
	INSERT INTO reading_sessions (id, user_id, book_id, session_date, minutes, pages, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	id := uuid.NewString()
	now := r.now().UTC()
	if _, err := r.db.ExecContext(ctx, query, id, s.UserID, sqlite.NullString(s.BookID), s.Date, s.Minutes, sqlite.NullInt(s.Pages), sqlite.FormatTime(now)); err != nil {
		return err
	}
	s.ID = id
	s.CreatedAt = now
	return nil
}

func (r *SQLiteRepo) ListByUser(ctx context.Context, q ListQuery) ([]Session, error) {
	clauses := []string{"user_id = ?"}
	args := []any{q.UserID}
	if q.Since != "" {
		clauses = append(clauses, "session_date >= ?")
		args = append(args, q.Since)
	}
	if !q.After.IsZero() {
		clauses = append(clauses, "(session_date, id) < (?, ?)")
		args = append(args, q.After.Date, q.After.ID)
	}

	query := fmt.Sprintf(`SELECT id, user_id, book_id, session_date, minutes, pages, created_at
	FROM reading_sessions WHERE %s ORDER BY session_date DESC, id DESC`, strings.Join(clauses, " AND "))
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var (
			s         Session
			bookID    sql.NullString
			pages     sql.NullInt64
			createdAt string
		)
		if err := rows.Scan(&s.ID, &s.UserID, &bookID, &s.Date, &s.Minutes, &pages, &createdAt); err != nil {
			return nil, err
		}
		if bookID.Valid {
			s.BookID = &bookID.String
		}
		if pages.Valid {
			p := int(pages.Int64)
			s.Pages = &p
		}
		if s.CreatedAt, err = sqlite.ParseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
