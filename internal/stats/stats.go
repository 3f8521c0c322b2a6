package stats

import (
	"bookshelf/internal/progress"
	"bookshelf/internal/readingsession"
)

const (
	MaxWindowDays = 366
	MaxWeeks      = 52
)

type Shelves struct {
	ToRead  int `json:"to_read"`
	Reading int `json:"reading"`
	Read    int `json:"read"`
}

// Dashboard is everything the progress page renders in one response.
type Dashboard struct {
	WindowDays int                    `json:"window_days"`
	Heatmap    [][]progress.DayBucket `json:"heatmap"`
	Weekly     []progress.WeekTotal   `json:"weekly"`
	Streak     int                    `json:"streak"`
	Summary    progress.Summary       `json:"summary"`
	Shelves    Shelves                `json:"shelves"`
	RatedCount int                    `json:"rated_count"`
	// AverageStars is on the 0-5 display scale; nil when nothing is rated.
	AverageStars *float64                `json:"average_stars"`
	Recent       []readingsession.Session `json:"recent"`
}
