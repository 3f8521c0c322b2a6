package readingsession

import (
	"context"
	"path/filepath"
	"testing"

	"bookshelf/internal/platform/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRepo_CreateAndList(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo := NewSQLiteRepo(db)

	dates := []string{"2024-03-01", "2024-03-03", "2024-03-02", "2024-03-03"}
	for i, d := range dates {
		s := &Session{UserID: "u1", Date: d, Minutes: 10 * (i + 1)}
		if i == 0 {
			s.Pages = intPtr(7)
		}
		require.NoError(t, repo.Create(ctx, s))
		assert.NotEmpty(t, s.ID)
	}
	require.NoError(t, repo.Create(ctx, &Session{UserID: "u2", Date: "2024-03-03", Minutes: 99}))

	all, err := repo.ListByUser(ctx, ListQuery{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "2024-03-03", all[0].Date)
	assert.Equal(t, "2024-03-01", all[3].Date)
	assert.Equal(t, 7, *all[3].Pages)
	assert.Nil(t, all[0].BookID)

	since, err := repo.ListByUser(ctx, ListQuery{UserID: "u1", Since: "2024-03-02"})
	require.NoError(t, err)
	assert.Len(t, since, 3)

	first, err := repo.ListByUser(ctx, ListQuery{UserID: "u1", Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	last := first[1]
	rest, err := repo.ListByUser(ctx, ListQuery{UserID: "u1", After: Cursor{Date: last.Date, ID: last.ID}})
	require.NoError(t, err)
	assert.Len(t, rest, 2)
	for _, s := range rest {
		assert.NotEqual(t, first[0].ID, s.ID)
		assert.NotEqual(t, first[1].ID, s.ID)
	}
}

func TestSQLiteRepo_BookReference(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo := NewSQLiteRepo(db)

	err = repo.Create(ctx, &Session{UserID: "u1", Date: "2024-03-01", BookID: strPtr("does-not-exist")})
	assert.Error(t, err, "foreign keys are enforced")

	_, err = db.ExecContext(ctx, `INSERT INTO library_items (id, user_id, title, status, created_at, updated_at)
		VALUES ('b1', 'u1', 'Dune', 'reading', ?, ?)`, "2024-03-01T00:00:00.000000000Z", "2024-03-01T00:00:00.000000000Z")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, &Session{UserID: "u1", Date: "2024-03-01", BookID: strPtr("b1"), Minutes: 5}))

	_, err = db.ExecContext(ctx, `DELETE FROM library_items WHERE id = 'b1'`)
	require.NoError(t, err)

	sessions, err := repo.ListByUser(ctx, ListQuery{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Nil(t, sessions[0].BookID, "book reference is nulled when the book is removed")
}
