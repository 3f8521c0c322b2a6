package library

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"bookshelf/internal/platform/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLiteRepo(t *testing.T) *SQLiteRepo {
	t.Helper()
	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewSQLiteRepo(db)
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return repo
}

func TestSQLiteRepo_CreateAndGet(t *testing.T) {
	repo := setupSQLiteRepo(t)
	ctx := context.Background()

	e := &Entry{
		UserID:        "u1",
		Type:          TypeBook,
		Title:         "Dune",
		Author:        "Frank Herbert",
		CoverImageURL: "https://covers.example/dune.jpg",
		ReleaseDate:   ptr("1965-08-01"),
		Overview:      "Spice.",
		Status:        StatusRead,
		Rating:        ptr(8.5),
		Review:        ptr("Classic"),
	}
	require.NoError(t, repo.Create(ctx, e))
	require.NotEmpty(t, e.ID)
	assert.False(t, e.CreatedAt.IsZero())

	got, err := repo.Get(ctx, "u1", e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Frank Herbert", got.Author)
	assert.Equal(t, "1965-08-01", *got.ReleaseDate)
	assert.Equal(t, 8.5, *got.Rating)
	assert.Equal(t, "Classic", *got.Review)
	assert.Equal(t, StatusRead, got.Status)
	assert.True(t, e.CreatedAt.Equal(got.CreatedAt))

	_, err = repo.Get(ctx, "someone-else", e.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteRepo_NullableColumns(t *testing.T) {
	repo := setupSQLiteRepo(t)
	ctx := context.Background()

	e := &Entry{UserID: "u1", Type: TypeBook, Title: "Untitled", Status: StatusToRead}
	require.NoError(t, repo.Create(ctx, e))

	got, err := repo.Get(ctx, "u1", e.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ReleaseDate)
	assert.Nil(t, got.Rating)
	assert.Nil(t, got.Review)
	assert.Equal(t, "", got.Author)
}

func TestSQLiteRepo_Update(t *testing.T) {
	repo := setupSQLiteRepo(t)
	ctx := context.Background()

	e := &Entry{UserID: "u1", Type: TypeBook, Title: "Emma", Author: "Jane Austen", Status: StatusReading, Rating: ptr(6.0)}
	require.NoError(t, repo.Create(ctx, e))

	read := StatusRead
	got, err := repo.Update(ctx, "u1", e.ID, Patch{Status: &read, ClearRating: true, Review: ptr("Witty")})
	require.NoError(t, err)
	assert.Equal(t, StatusRead, got.Status)
	assert.Nil(t, got.Rating)
	assert.Equal(t, "Witty", *got.Review)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))

	_, err = repo.Update(ctx, "u1", "missing", Patch{Status: &read})
	assert.ErrorIs(t, err, ErrNotFound)

	unchanged, err := repo.Update(ctx, "u1", e.ID, Patch{})
	require.NoError(t, err)
	assert.Equal(t, got.UpdatedAt, unchanged.UpdatedAt)
}

func TestSQLiteRepo_ListAndDelete(t *testing.T) {
	repo := setupSQLiteRepo(t)
	ctx := context.Background()

	titles := []string{"First", "Second", "Third"}
	statuses := []Status{StatusRead, StatusToRead, StatusRead}
	for i, title := range titles {
		require.NoError(t, repo.Create(ctx, &Entry{UserID: "u1", Type: TypeBook, Title: title, Status: statuses[i]}))
	}
	require.NoError(t, repo.Create(ctx, &Entry{UserID: "u2", Type: TypeBook, Title: "Other", Status: StatusRead}))

	all, err := repo.List(ctx, Filter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Third", all[0].Title)
	assert.Equal(t, "First", all[2].Title)

	read, err := repo.List(ctx, Filter{UserID: "u1", Status: StatusRead})
	require.NoError(t, err)
	assert.Len(t, read, 2)

	page, err := repo.List(ctx, Filter{UserID: "u1", Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Second", page[0].Title)

	require.NoError(t, repo.Delete(ctx, "u1", all[0].ID))
	assert.ErrorIs(t, repo.Delete(ctx, "u1", all[0].ID), ErrNotFound)

	remaining, err := repo.List(ctx, Filter{UserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
}

func TestSQLiteRepo_RejectsBadStatus(t *testing.T) {
	repo := setupSQLiteRepo(t)

	err := repo.Create(context.Background(), &Entry{UserID: "u1", Type: TypeBook, Title: "X", Status: "DONE"})
	assert.Error(t, err)
}
