package stats

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookshelf/internal/library"
	"bookshelf/internal/readingsession"
	"bookshelf/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLibrary struct {
	mock.Mock
}

func (m *mockLibrary) Snapshot(ctx context.Context, userID string) ([]library.Entry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]library.Entry), args.Error(1)
}

type mockSessions struct {
	mock.Mock
}

func (m *mockSessions) Since(ctx context.Context, userID, since string) ([]readingsession.Session, error) {
	args := m.Called(ctx, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]readingsession.Session), args.Error(1)
}

var now = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

func newTestService() (*Service, *mockLibrary, *mockSessions) {
	lib := new(mockLibrary)
	sess := new(mockSessions)
	svc := NewService(lib, sess)
	svc.now = func() time.Time { return now }
	return svc, lib, sess
}

func f(v float64) *float64 { return &v }

func TestService_Dashboard(t *testing.T) {
	svc, lib, sess := newTestService()

	sessions := []readingsession.Session{
		{ID: "s3", Date: "2024-03-10", Minutes: 30},
		{ID: "s2", Date: "2024-03-09", Minutes: 20},
		{ID: "s1", Date: "2023-12-20", Minutes: 40},
		{ID: "s0", Date: "2023-12-01", Minutes: 50},
	}
	entries := []library.Entry{
		{Status: library.StatusRead, Rating: f(8), CreatedAt: now.AddDate(0, 0, -1)},
		{Status: library.StatusRead, Rating: f(6), CreatedAt: now.AddDate(0, 0, -40)},
		{Status: library.StatusReading},
		{Status: library.StatusToRead},
		{Status: library.StatusToRead},
	}
	// 84-day window vs 8 weeks + 1: the window is longer
	sess.On("Since", mock.Anything, "u1", "2023-12-17").Return(sessions, nil)
	lib.On("Snapshot", mock.Anything, "u1").Return(entries, nil)

	d, err := svc.Dashboard(context.Background(), "u1", 0, 0)
	require.NoError(t, err)

	assert.Equal(t, 84, d.WindowDays)
	require.Len(t, d.Heatmap, 12)
	assert.Equal(t, 30, d.Heatmap[11][6].Minutes)
	assert.Equal(t, 2, d.Streak)
	assert.Equal(t, Shelves{ToRead: 2, Reading: 1, Read: 2}, d.Shelves)
	assert.Equal(t, 2, d.RatedCount)
	require.NotNil(t, d.AverageStars)
	assert.InDelta(t, 3.5, *d.AverageStars, 1e-9)
	assert.Equal(t, 90, d.Summary.TotalMinutes, "the 2023-12-01 session is outside the window")
	assert.Len(t, d.Recent, 4)
	assert.NotEmpty(t, d.Weekly)
}

func TestService_Dashboard_SummaryMatchesHeatmap(t *testing.T) {
	svc, lib, sess := newTestService()
	sessions := []readingsession.Session{
		{ID: "s2", Date: "2024-03-11", Minutes: 60}, // tomorrow, allowed by the session log
		{ID: "s1", Date: "2024-03-10", Minutes: 25},
	}
	sess.On("Since", mock.Anything, "u1", mock.Anything).Return(sessions, nil)
	lib.On("Snapshot", mock.Anything, "u1").Return(nil, nil)

	d, err := svc.Dashboard(context.Background(), "u1", 7, 1)
	require.NoError(t, err)

	heatmapTotal := 0
	for _, week := range d.Heatmap {
		for _, day := range week {
			heatmapTotal += day.Minutes
		}
	}
	assert.Equal(t, 25, heatmapTotal)
	assert.Equal(t, heatmapTotal, d.Summary.TotalMinutes)
	assert.Equal(t, 1, d.Summary.Sessions)
}

func TestService_Dashboard_Empty(t *testing.T) {
	svc, lib, sess := newTestService()
	sess.On("Since", mock.Anything, "u1", mock.Anything).Return(nil, nil)
	lib.On("Snapshot", mock.Anything, "u1").Return(nil, nil)

	d, err := svc.Dashboard(context.Background(), "u1", 14, 2)
	require.NoError(t, err)
	assert.Len(t, d.Heatmap, 2)
	assert.Empty(t, d.Weekly)
	assert.Zero(t, d.Streak)
	assert.Nil(t, d.AverageStars)
	assert.NotNil(t, d.Recent)
}

func TestService_Dashboard_LookbackCoversWeeks(t *testing.T) {
	svc, lib, sess := newTestService()
	// 20 weeks * 7 + 7 = 147 days back
	sess.On("Since", mock.Anything, "u1", "2023-10-15").Return(nil, nil)
	lib.On("Snapshot", mock.Anything, "u1").Return(nil, nil)

	_, err := svc.Dashboard(context.Background(), "u1", 7, 20)
	require.NoError(t, err)
	sess.AssertExpectations(t)
}

func TestService_Dashboard_Errors(t *testing.T) {
	boom := errors.New("boom")

	svc, _, sess := newTestService()
	sess.On("Since", mock.Anything, "u1", mock.Anything).Return(nil, boom)
	_, err := svc.Dashboard(context.Background(), "u1", 0, 0)
	assert.ErrorIs(t, err, boom)

	svc, lib, sess := newTestService()
	sess.On("Since", mock.Anything, "u1", mock.Anything).Return(nil, nil)
	lib.On("Snapshot", mock.Anything, "u1").Return(nil, boom)
	_, err = svc.Dashboard(context.Background(), "u1", 0, 0)
	assert.ErrorIs(t, err, boom)
}

func TestHTTPHandler_Get(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc, lib, sess := newTestService()
		sess.On("Since", mock.Anything, "u1", mock.Anything).Return(nil, nil)
		lib.On("Snapshot", mock.Anything, "u1").Return(nil, nil)
		handler := NewHTTPHandler(svc)

		w := httptest.NewRecorder()
		handler.Get(w, testutil.NewRequestAsUser(http.MethodGet, "/v1/me/stats?window_days=28&weeks=4", nil, "u1"))

		rr := testutil.RecordHTTPResponse(w)
		require.Equal(t, http.StatusOK, rr.Code)
		data := rr.Data().(map[string]any)
		assert.Equal(t, float64(28), data["window_days"])
		assert.Len(t, data["heatmap"], 4)
	})

	t.Run("bad window", func(t *testing.T) {
		svc, _, _ := newTestService()
		handler := NewHTTPHandler(svc)

		w := httptest.NewRecorder()
		handler.Get(w, testutil.NewRequestAsUser(http.MethodGet, "/v1/me/stats?window_days=abc", nil, "u1"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		svc, _, _ := newTestService()
		handler := NewHTTPHandler(svc)

		w := httptest.NewRecorder()
		handler.Get(w, testutil.NewRequest(http.MethodGet, "/v1/me/stats", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
