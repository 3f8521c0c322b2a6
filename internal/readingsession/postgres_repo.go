package readingsession

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sessionColumns = `id::text, user_id, book_id::text, to_char(session_date, 'YYYY-MM-DD'), minutes, pages, created_at`

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

func (r *PostgresRepo) Create(ctx context.Context, s *Session) error {
	const query = `
	INSERT INTO reading_sessions (user_id, book_id, session_date, minutes, pages)
	VALUES ($1, $2::text::uuid, $3::text::date, $4, $5)
	RETURNING id::text, created_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.QueryRow(timeoutCtx, query,
		s.UserID,
		s.BookID,
		s.Date,
		s.Minutes,
		s.Pages,
	).Scan(&s.ID, &s.CreatedAt)
}

func (r *PostgresRepo) ListByUser(ctx context.Context, q ListQuery) ([]Session, error) {
	clauses := []string{"user_id = $1"}
	args := []any{q.UserID}
	argn := 2

	if q.Since != "" {
		clauses = append(clauses, fmt.Sprintf("session_date >= $%d::text::date", argn))
		args = append(args, q.Since)
		argn++
	}
	if !q.After.IsZero() {
		clauses = append(clauses, fmt.Sprintf("(session_date, id::text) < ($%d::text::date, $%d)", argn, argn+1))
		args = append(args, q.After.Date, q.After.ID)
		argn += 2
	}

	query := fmt.Sprintf(`SELECT %s FROM reading_sessions WHERE %s ORDER BY session_date DESC, id::text DESC`,
		sessionColumns, strings.Join(clauses, " AND "))
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argn)
		args = append(args, q.Limit)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func scanSession(row pgx.Row) (Session, error) {
	var s Session
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.BookID,
		&s.Date,
		&s.Minutes,
		&s.Pages,
		&s.CreatedAt,
	)
	return s, err
}
