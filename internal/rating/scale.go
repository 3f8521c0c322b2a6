package rating

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

const (
	// MaxStars is the top of the display scale.
	MaxStars = 5.0
	// MaxStored is the top of the storage scale.
	MaxStored = 10.0
	// StarStep is the granularity accepted on the display scale.
	StarStep = 0.25

	scaleFactor = MaxStored / MaxStars
	tolerance   = 1e-9
)

// NotRated is rendered by Format for entries without a rating.
const NotRated = "Not rated"

var ErrInvalidRating = errors.New("invalid rating")

// UIToStorage converts a display rating (0-5 stars in quarter steps) into the
// 0-10 storage scale. A nil input yields a nil output.
func UIToStorage(ui *float64) (*float64, error) {
	if ui == nil {
		return nil, nil
	}
	v := *ui
	if math.IsNaN(v) || v < 0 || v > MaxStars {
		return nil, fmt.Errorf("%w: %v is outside 0-%v", ErrInvalidRating, v, MaxStars)
	}
	steps := v / StarStep
	if math.Abs(steps-math.Round(steps)) > tolerance {
		return nil, fmt.Errorf("%w: %v is not a multiple of %v", ErrInvalidRating, v, StarStep)
	}
	stored := clamp(v*scaleFactor, 0, MaxStored)
	return &stored, nil
}

// StorageToUI converts a stored 0-10 rating back to the display scale.
func StorageToUI(stored *float64) *float64 {
	if stored == nil {
		return nil
	}
	ui := *stored / scaleFactor
	return &ui
}

// ValidateStorage checks a value already on the storage scale.
func ValidateStorage(n float64) error {
	if math.IsNaN(n) || n < 0 || n > MaxStored {
		return fmt.Errorf("%w: stored rating %v is outside 0-%v", ErrInvalidRating, n, MaxStored)
	}
	return nil
}

// Format renders a stored rating as "n/10".
func Format(stored *float64) string {
	if stored == nil {
		return NotRated
	}
	return strconv.FormatFloat(*stored, 'f', -1, 64) + "/10"
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
