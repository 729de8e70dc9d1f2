// Package catalog holds the fixed reference data the app ships with:
// activity types, frequency labels, per-activity point values, history
// date ranges and the per-range points table. It sits behind Provider so
// a real data source can replace it without touching derivation logic.
package catalog

import (
	"errors"
	"fmt"

	"github.com/dukerupert/streek/internal/model"
)

// CustomFrequency is the frequency label that requires user-supplied text.
const CustomFrequency = "Custom"

// ErrUnknownRange is returned for a date range label the catalog does not know.
var ErrUnknownRange = errors.New("unknown date range")

type Provider interface {
	ActivityTypes() []model.ActivityType
	Frequencies() []string
	ActivityPoints() []model.ActivityPoints
	PointsFor(activityName string) int
	DateRanges() []model.DateRange
	DefaultRange() model.DateRange
	LookupRange(label string) (model.DateRange, bool)
	PointsForRange(label string) (int, error)
}

// Static is the built-in catalog.
type Static struct {
	activityTypes  []model.ActivityType
	frequencies    []string
	activityPoints []model.ActivityPoints
	dateRanges     []model.DateRange
	rangePoints    map[string]int
}

// NewStatic returns the default catalog.
func NewStatic() *Static {
	return &Static{
		activityTypes: []model.ActivityType{
			{ID: "1", Name: "Running", Icon: "fitness-outline"},
			{ID: "2", Name: "Gym", Icon: "barbell"},
			{ID: "3", Name: "Yoga", Icon: "body"},
			{ID: "4", Name: "Swimming", Icon: "water-outline"},
			{ID: "5", Name: "Cycling", Icon: "bicycle"},
			{ID: "6", Name: "Walking", Icon: "walk"},
		},
		frequencies: []string{
			"Daily",
			"Weekdays",
			"Weekends",
			"Mon, Wed, Fri",
			"Tue, Thu, Sat",
			CustomFrequency,
		},
		activityPoints: []model.ActivityPoints{
			{Name: "Morning Run", Points: 10, Icon: "run"},
			{Name: "Gym Workout", Points: 15, Icon: "barbell"},
			{Name: "Yoga Session", Points: 8, Icon: "body"},
			{Name: "Swimming", Points: 12, Icon: "water"},
			{Name: "Cycling", Points: 10, Icon: "bicycle"},
			{Name: "Walking", Points: 5, Icon: "walk"},
		},
		dateRanges: []model.DateRange{
			{Label: "Last 7 Days", Days: 7},
			{Label: "Last 30 Days", Days: 30},
			{Label: "Last 90 Days", Days: 90},
			{Label: "Last 12 Months", Days: 365},
		},
		rangePoints: map[string]int{
			"Last 7 Days":    350,
			"Last 30 Days":   720,
			"Last 90 Days":   1450,
			"Last 12 Months": 3200,
		},
	}
}

func (s *Static) ActivityTypes() []model.ActivityType {
	return append([]model.ActivityType(nil), s.activityTypes...)
}

func (s *Static) Frequencies() []string {
	return append([]string(nil), s.frequencies...)
}

func (s *Static) ActivityPoints() []model.ActivityPoints {
	return append([]model.ActivityPoints(nil), s.activityPoints...)
}

// PointsFor returns the point value of a named activity, or 0 if it is not listed.
func (s *Static) PointsFor(activityName string) int {
	for _, ap := range s.activityPoints {
		if ap.Name == activityName {
			return ap.Points
		}
	}
	return 0
}

func (s *Static) DateRanges() []model.DateRange {
	return append([]model.DateRange(nil), s.dateRanges...)
}

func (s *Static) LookupRange(label string) (model.DateRange, bool) {
	for _, r := range s.dateRanges {
		if r.Label == label {
			return r, true
		}
	}
	return model.DateRange{}, false
}

// DefaultRange is the range selected when the client does not name one.
func (s *Static) DefaultRange() model.DateRange {
	return s.dateRanges[0]
}

func (s *Static) PointsForRange(label string) (int, error) {
	points, ok := s.rangePoints[label]
	if !ok {
		return 0, fmt.Errorf("points for %q: %w", label, ErrUnknownRange)
	}
	return points, nil
}
