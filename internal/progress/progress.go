// Package progress turns reading-session logs into time-bucketed statistics.
// Every function is pure and takes the reference time explicitly.
package progress

import (
	"fmt"
	"sort"
	"time"

	"bookshelf/internal/library"
	"bookshelf/internal/readingsession"
)

const (
	DefaultWindowDays = 84
	DefaultWeeks      = 8
	DaysPerWeek       = 7
	// StreakWindow is how recent the last finished book must be to count.
	StreakWindow = 7 * 24 * time.Hour
)

type DayBucket struct {
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
}

type WeekTotal struct {
	Year    int    `json:"year"`
	Week    int    `json:"week"`
	Key     string `json:"key"`
	Minutes int    `json:"minutes"`
}

// PerDayBuckets returns exactly windowDays buckets, oldest first, ending on
// now's calendar date. Days without sessions have zero minutes.
func PerDayBuckets(sessions []readingsession.Session, windowDays int, now time.Time) []DayBucket {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	buckets := make([]DayBucket, windowDays)
	index := make(map[string]int, windowDays)
	for i := range buckets {
		date := today.AddDate(0, 0, i-windowDays+1).Format(time.DateOnly)
		buckets[i].Date = date
		index[date] = i
	}
	for _, s := range sessions {
		if i, ok := index[s.Date]; ok {
			buckets[i].Minutes += s.Minutes
		}
	}
	return buckets
}

// ChunkWeeks splits buckets into groups of size. The last group may be short.
func ChunkWeeks(buckets []DayBucket, size int) [][]DayBucket {
	if size <= 0 {
		size = DaysPerWeek
	}
	chunks := make([][]DayBucket, 0, (len(buckets)+size-1)/size)
	for start := 0; start < len(buckets); start += size {
		end := min(start+size, len(buckets))
		chunks = append(chunks, buckets[start:end])
	}
	return chunks
}

// WeekOfYear numbers weeks so that week 1 ends on the first Saturday of the
// year.
func WeekOfYear(t time.Time) int {
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	offset := t.YearDay() + int(jan1.Weekday())
	return (offset + DaysPerWeek - 1) / DaysPerWeek
}

// WeeklyTotals sums minutes per (year, week) and returns the limit most
// recent weeks that have sessions, oldest first. Sessions with unparseable
// dates are skipped.
func WeeklyTotals(sessions []readingsession.Session, limit int) []WeekTotal {
	if limit <= 0 {
		limit = DefaultWeeks
	}
	type weekKey struct{ year, week int }
	sums := make(map[weekKey]int)
	for _, s := range sessions {
		t, err := time.Parse(time.DateOnly, s.Date)
		if err != nil {
			continue
		}
		sums[weekKey{t.Year(), WeekOfYear(t)}] += s.Minutes
	}

	totals := make([]WeekTotal, 0, len(sums))
	for k, minutes := range sums {
		totals = append(totals, WeekTotal{
			Year:    k.year,
			Week:    k.week,
			Key:     fmt.Sprintf("%d-W%02d", k.year, k.week),
			Minutes: minutes,
		})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Year != totals[j].Year {
			return totals[i].Year < totals[j].Year
		}
		return totals[i].Week < totals[j].Week
	})
	if len(totals) > limit {
		totals = totals[len(totals)-limit:]
	}
	return totals
}

// ReadingStreakHeuristic is the number of finished books, provided the most
// recently added one was added within StreakWindow of now. It is not a
// count of consecutive reading days.
func ReadingStreakHeuristic(entries []library.Entry, now time.Time) int {
	var (
		count  int
		newest time.Time
	)
	for _, e := range entries {
		if e.Status != library.StatusRead {
			continue
		}
		count++
		if e.CreatedAt.After(newest) {
			newest = e.CreatedAt
		}
	}
	if count == 0 || now.Sub(newest) > StreakWindow {
		return 0
	}
	return count
}

type Summary struct {
	Sessions     int     `json:"sessions"`
	TotalMinutes int     `json:"total_minutes"`
	TotalPages   int     `json:"total_pages"`
	ActiveDays   int     `json:"active_days"`
	AvgPerDay    float64 `json:"avg_minutes_per_active_day"`
}

// Summarize totals the given sessions. A day counts as active when it has
// at least one minute logged.
func Summarize(sessions []readingsession.Session) Summary {
	var sum Summary
	perDay := make(map[string]int)
	for _, s := range sessions {
		sum.Sessions++
		sum.TotalMinutes += s.Minutes
		if s.Pages != nil {
			sum.TotalPages += *s.Pages
		}
		perDay[s.Date] += s.Minutes
	}
	for _, minutes := range perDay {
		if minutes > 0 {
			sum.ActiveDays++
		}
	}
	if sum.ActiveDays > 0 {
		sum.AvgPerDay = float64(sum.TotalMinutes) / float64(sum.ActiveDays)
	}
	return sum
}
