package stats

import (
	"context"
	"fmt"
	"time"

	"bookshelf/internal/library"
	"bookshelf/internal/progress"
	"bookshelf/internal/rating"
	"bookshelf/internal/readingsession"
)

const recentSessions = 5

type LibrarySource interface {
	Snapshot(ctx context.Context, userID string) ([]library.Entry, error)
}

type SessionSource interface {
	Since(ctx context.Context, userID, since string) ([]readingsession.Session, error)
}

type Service struct {
	library  LibrarySource
	sessions SessionSource
	now      func() time.Time
}

func NewService(lib LibrarySource, sessions SessionSource) *Service {
	return &Service{library: lib, sessions: sessions, now: time.Now}
}

// Dashboard builds the progress view for one user. Sessions are loaded once,
// far enough back to cover both the heatmap window and the weekly totals.
func (s *Service) Dashboard(ctx context.Context, userID string, windowDays, weeks int) (Dashboard, error) {
	windowDays = clamp(windowDays, progress.DefaultWindowDays, MaxWindowDays)
	weeks = clamp(weeks, progress.DefaultWeeks, MaxWeeks)
	now := s.now()

	lookback := max(windowDays, weeks*progress.DaysPerWeek+progress.DaysPerWeek)
	since := now.AddDate(0, 0, -lookback).Format(time.DateOnly)
	sessions, err := s.sessions.Since(ctx, userID, since)
	if err != nil {
		return Dashboard{}, fmt.Errorf("dashboard sessions: %w", err)
	}
	entries, err := s.library.Snapshot(ctx, userID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("dashboard library: %w", err)
	}

	buckets := progress.PerDayBuckets(sessions, windowDays, now)
	d := Dashboard{
		WindowDays: windowDays,
		Heatmap:    progress.ChunkWeeks(buckets, progress.DaysPerWeek),
		Weekly:     progress.WeeklyTotals(sessions, weeks),
		Streak:     progress.ReadingStreakHeuristic(entries, now),
		Summary:    progress.Summarize(inWindow(sessions, buckets[0].Date, buckets[len(buckets)-1].Date)),
	}

	var ratingSum float64
	for _, e := range entries {
		switch e.Status {
		case library.StatusToRead:
			d.Shelves.ToRead++
		case library.StatusReading:
			d.Shelves.Reading++
		case library.StatusRead:
			d.Shelves.Read++
		}
		if e.Rating != nil {
			d.RatedCount++
			ratingSum += *e.Rating
		}
	}
	if d.RatedCount > 0 {
		avg := ratingSum / float64(d.RatedCount)
		d.AverageStars = rating.StorageToUI(&avg)
	}

	// sessions arrive newest first
	d.Recent = sessions[:min(recentSessions, len(sessions))]
	if d.Recent == nil {
		d.Recent = []readingsession.Session{}
	}
	return d, nil
}

// inWindow keeps sessions dated within [from, to], matching the heatmap.
func inWindow(sessions []readingsession.Session, from, to string) []readingsession.Session {
	out := make([]readingsession.Session, 0, len(sessions))
	for _, s := range sessions {
		if s.Date >= from && s.Date <= to {
			out = append(out, s)
		}
	}
	return out
}

func clamp(v, def, hi int) int {
	if v <= 0 {
		return def
	}
	return min(v, hi)
}
