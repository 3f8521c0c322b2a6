package library

import (
	"context"
	"errors"
	"testing"

	"bookshelf/internal/rating"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *MockRepository) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockRepo := NewMockRepository(ctrl)
	return NewService(mockRepo, NewMemory(mockRepo)), mockRepo
}

func TestService_Create(t *testing.T) {
	svc, mockRepo := newTestService(t)
	ctx := context.Background()

	t.Run("defaults type and records in memory", func(t *testing.T) {
		mockRepo.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, nil)
		_, err := svc.Snapshot(ctx, "u1")
		require.NoError(t, err)

		mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e *Entry) error {
			assert.Equal(t, TypeBook, e.Type)
			e.ID = "new-id"
			return nil
		})

		e := &Entry{UserID: "u1", Title: "Dune", Status: StatusToRead}
		require.NoError(t, svc.Create(ctx, e))
		assert.Equal(t, "new-id", e.ID)

		snap, err := svc.Snapshot(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, snap, 1)
		assert.Equal(t, "new-id", snap[0].ID)
	})

	t.Run("invalid status never reaches the repository", func(t *testing.T) {
		err := svc.Create(ctx, &Entry{UserID: "u1", Status: "DONE"})
		assert.True(t, errors.Is(err, ErrInvalidStatus))
	})

	t.Run("repository failure", func(t *testing.T) {
		mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

		err := svc.Create(ctx, &Entry{UserID: "u1", Status: StatusRead})

		var pe *PersistenceError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, "create", pe.Op)
	})
}

func TestService_Transition(t *testing.T) {
	svc, mockRepo := newTestService(t)
	ctx := context.Background()
	e := Entry{ID: "e1", UserID: "u1", Status: StatusToRead}

	t.Run("success", func(t *testing.T) {
		read := StatusRead
		mockRepo.EXPECT().Update(gomock.Any(), "u1", "e1", Patch{Status: &read}).
			Return(Entry{ID: "e1", UserID: "u1", Status: StatusRead}, nil)

		got, err := svc.Transition(ctx, e, StatusRead)
		require.NoError(t, err)
		assert.Equal(t, StatusRead, got.Status)
	})

	t.Run("invalid target", func(t *testing.T) {
		_, err := svc.Transition(ctx, e, "shelved")
		assert.True(t, errors.Is(err, ErrInvalidStatus))
	})

	t.Run("update failure", func(t *testing.T) {
		mockRepo.EXPECT().Update(gomock.Any(), "u1", "e1", gomock.Any()).Return(Entry{}, errors.New("timeout"))

		_, err := svc.Transition(ctx, e, StatusReading)

		var pe *PersistenceError
		assert.True(t, errors.As(err, &pe))
	})

	t.Run("missing row", func(t *testing.T) {
		mockRepo.EXPECT().Update(gomock.Any(), "u1", "e1", gomock.Any()).Return(Entry{}, ErrNotFound)

		_, err := svc.Transition(ctx, e, StatusReading)
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestService_SetRating(t *testing.T) {
	svc, mockRepo := newTestService(t)
	ctx := context.Background()
	e := Entry{ID: "e1", UserID: "u1", Status: StatusRead}

	t.Run("stores doubled value", func(t *testing.T) {
		mockRepo.EXPECT().Update(gomock.Any(), "u1", "e1", Patch{Rating: ptr(7.0)}).
			Return(Entry{ID: "e1", UserID: "u1", Rating: ptr(7.0)}, nil)

		got, err := svc.SetRating(ctx, e, ptr(3.5))
		require.NoError(t, err)
		assert.Equal(t, 7.0, *got.Rating)
	})

	t.Run("nil clears", func(t *testing.T) {
		mockRepo.EXPECT().Update(gomock.Any(), "u1", "e1", Patch{ClearRating: true}).Return(e, nil)

		_, err := svc.SetRating(ctx, e, nil)
		require.NoError(t, err)
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := svc.SetRating(ctx, e, ptr(5.5))
		assert.True(t, errors.Is(err, rating.ErrInvalidRating))
	})
}

func TestService_SetReview(t *testing.T) {
	svc, mockRepo := newTestService(t)
	ctx := context.Background()
	e := Entry{ID: "e1", UserID: "u1", Status: StatusRead}

	mockRepo.EXPECT().Update(gomock.Any(), "u1", "e1", Patch{Review: ptr("Loved it")}).Return(e, nil)
	_, err := svc.SetReview(ctx, e, ptr("  Loved it \n"))
	require.NoError(t, err)

	mockRepo.EXPECT().Update(gomock.Any(), "u1", "e1", Patch{ClearReview: true}).Return(e, nil)
	_, err = svc.SetReview(ctx, e, ptr("   "))
	require.NoError(t, err)
}

func TestService_Remove(t *testing.T) {
	svc, mockRepo := newTestService(t)
	ctx := context.Background()

	mockRepo.EXPECT().List(gomock.Any(), gomock.Any()).Return([]Entry{{ID: "e1", UserID: "u1"}}, nil)
	_, err := svc.Snapshot(ctx, "u1")
	require.NoError(t, err)

	mockRepo.EXPECT().Delete(gomock.Any(), "u1", "e1").Return(nil)
	require.NoError(t, svc.Remove(ctx, "u1", "e1"))

	snap, err := svc.Snapshot(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, snap)

	mockRepo.EXPECT().Delete(gomock.Any(), "u1", "e2").Return(ErrNotFound)
	assert.True(t, errors.Is(svc.Remove(ctx, "u1", "e2"), ErrNotFound))
}

func TestService_List(t *testing.T) {
	svc, mockRepo := newTestService(t)
	ctx := context.Background()

	mockRepo.EXPECT().List(gomock.Any(), Filter{UserID: "u1", Status: StatusRead}).Return([]Entry{{ID: "e1"}}, nil)
	got, err := svc.List(ctx, Filter{UserID: "u1", Status: StatusRead})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = svc.List(ctx, Filter{UserID: "u1", Status: "nope"})
	assert.True(t, errors.Is(err, ErrInvalidStatus))
}
