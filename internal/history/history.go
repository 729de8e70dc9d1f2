package history

import (
	"math"
	"sort"
	"time"

	"github.com/dukerupert/streek/internal/model"
)

type Stats struct {
	CompletedCount        int `json:"completed_count"`
	TotalCount            int `json:"total_count"`
	CompletionRatePercent int `json:"completion_rate_percent"`
}

// Day is one cell of the weekly streak calendar.
type Day struct {
	Label string    `json:"label"`
	Date  time.Time `json:"date"`
	Done  bool      `json:"done"`
}

var weekdayLabels = [7]string{"M", "T", "W", "T", "F", "S", "S"}

// FilterByRange returns the records dated within [reference-rangeDays, reference],
// newest first. Records sharing a date keep their input order.
func FilterByRange(records []model.ActivityRecord, rangeDays int, reference time.Time) []model.ActivityRecord {
	end := startOfDay(reference)
	start := end.AddDate(0, 0, -rangeDays)

	filtered := make([]model.ActivityRecord, 0, len(records))
	for _, r := range records {
		d := startOfDay(r.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		filtered = append(filtered, r)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return startOfDay(filtered[i].Date).After(startOfDay(filtered[j].Date))
	})
	return filtered
}

// FilterByActivity keeps exact name matches. A nil name keeps everything.
func FilterByActivity(records []model.ActivityRecord, name *string) []model.ActivityRecord {
	if name == nil {
		return records
	}
	filtered := make([]model.ActivityRecord, 0, len(records))
	for _, r := range records {
		if r.Name == *name {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// ComputeStats returns the completion rate as a rounded percentage.
// An empty slice yields a rate of 0.
func ComputeStats(records []model.ActivityRecord) Stats {
	st := Stats{TotalCount: len(records)}
	for _, r := range records {
		if r.Completed {
			st.CompletedCount++
		}
	}
	st.CompletionRatePercent = Percent(st.CompletedCount, st.TotalCount)
	return st
}

// Percent returns round(part/total*100), or 0 when total is 0.
func Percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// UniqueActivityNames returns the distinct record names in sorted order.
func UniqueActivityNames(records []model.ActivityRecord) []string {
	seen := make(map[string]struct{}, len(records))
	names := make([]string, 0)
	for _, r := range records {
		if _, ok := seen[r.Name]; ok {
			continue
		}
		seen[r.Name] = struct{}{}
		names = append(names, r.Name)
	}
	sort.Strings(names)
	return names
}

// WeeklyCalendar returns Monday through Sunday of the week containing
// reference, each marked done when a completed record falls on that date.
func WeeklyCalendar(records []model.ActivityRecord, reference time.Time) [7]Day {
	done := completedDays(records)

	ref := startOfDay(reference)
	offset := (int(ref.Weekday()) + 6) % 7 // days since Monday
	monday := ref.AddDate(0, 0, -offset)

	var week [7]Day
	for i := range week {
		d := monday.AddDate(0, 0, i)
		_, ok := done[d.Format(model.DateLayout)]
		week[i] = Day{Label: weekdayLabels[i], Date: d, Done: ok}
	}
	return week
}

// LongestStreak returns the longest run of consecutive calendar days that
// each have at least one completed record.
func LongestStreak(records []model.ActivityRecord) int {
	done := completedDays(records)
	if len(done) == 0 {
		return 0
	}

	days := make([]time.Time, 0, len(done))
	for _, d := range done {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i-1].AddDate(0, 0, 1).Equal(days[i]) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

func SumPoints(records []model.ActivityRecord) int {
	total := 0
	for _, r := range records {
		total += r.Points
	}
	return total
}

func completedDays(records []model.ActivityRecord) map[string]time.Time {
	done := make(map[string]time.Time)
	for _, r := range records {
		if !r.Completed {
			continue
		}
		d := startOfDay(r.Date)
		done[d.Format(model.DateLayout)] = d
	}
	return done
}

// startOfDay truncates to midnight UTC of the same calendar date, so records
// parsed from YYYY-MM-DD and local reference times compare by date alone.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
