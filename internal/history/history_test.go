package history

import (
	"testing"
	"time"

	"github.com/dukerupert/streek/internal/model"
)

func rec(id, name, date string, completed bool, points int) model.ActivityRecord {
	d, err := time.Parse(model.DateLayout, date)
	if err != nil {
		panic(err)
	}
	return model.ActivityRecord{ID: id, Name: name, Date: d, Completed: completed, Points: points}
}

// tenRecords mirrors the app's default history: ten entries, seven completed.
func tenRecords() []model.ActivityRecord {
	return []model.ActivityRecord{
		rec("1", "Morning Run", "2025-03-23", true, 10),
		rec("2", "Gym Workout", "2025-03-22", true, 15),
		rec("3", "Yoga Session", "2025-03-21", true, 8),
		rec("4", "Morning Run", "2025-03-20", true, 10),
		rec("5", "Gym Workout", "2025-03-19", true, 15),
		rec("6", "Yoga Session", "2025-03-18", false, 0),
		rec("7", "Morning Run", "2025-03-17", true, 10),
		rec("8", "Gym Workout", "2025-03-16", true, 15),
		rec("9", "Yoga Session", "2025-03-15", false, 0),
		rec("10", "Morning Run", "2025-03-14", false, 0),
	}
}

func TestComputeStatsSeventyPercent(t *testing.T) {
	st := ComputeStats(tenRecords())
	if st.CompletedCount != 7 {
		t.Errorf("completed = %d, want 7", st.CompletedCount)
	}
	if st.TotalCount != 10 {
		t.Errorf("total = %d, want 10", st.TotalCount)
	}
	if st.CompletionRatePercent != 70 {
		t.Errorf("rate = %d, want 70", st.CompletionRatePercent)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	st := ComputeStats(nil)
	if st.CompletionRatePercent != 0 {
		t.Errorf("rate = %d, want 0", st.CompletionRatePercent)
	}
	if st.CompletedCount != 0 || st.TotalCount != 0 {
		t.Errorf("stats = %+v, want zero", st)
	}
}

func TestPercentRounds(t *testing.T) {
	tests := []struct {
		part, total, want int
	}{
		{1, 3, 33},
		{2, 3, 67},
		{1, 2, 50},
		{3, 5, 60},
		{0, 0, 0},
		{5, 5, 100},
	}
	for _, tt := range tests {
		if got := Percent(tt.part, tt.total); got != tt.want {
			t.Errorf("Percent(%d, %d) = %d, want %d", tt.part, tt.total, got, tt.want)
		}
	}
}

func TestFilterByRangeBounds(t *testing.T) {
	ref := time.Date(2025, 3, 23, 15, 30, 0, 0, time.UTC)
	got := FilterByRange(tenRecords(), 7, ref)

	// [2025-03-16, 2025-03-23] inclusive
	if len(got) != 8 {
		t.Fatalf("expected 8 records, got %d", len(got))
	}
	start := time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 23, 0, 0, 0, 0, time.UTC)
	for _, r := range got {
		if r.Date.Before(start) || r.Date.After(end) {
			t.Errorf("record %s dated %s outside range", r.ID, r.DateString())
		}
	}
}

func TestFilterByRangeNewestFirst(t *testing.T) {
	records := []model.ActivityRecord{
		rec("a", "Walking", "2025-03-10", true, 5),
		rec("b", "Walking", "2025-03-12", true, 5),
		rec("c", "Cycling", "2025-03-11", true, 10),
		rec("d", "Swimming", "2025-03-12", true, 12),
	}
	ref := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	got := FilterByRange(records, 30, ref)

	want := []string{"b", "d", "c", "a"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("got[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestFilterByRangeExcludesFuture(t *testing.T) {
	records := []model.ActivityRecord{
		rec("past", "Walking", "2025-03-10", true, 5),
		rec("future", "Walking", "2025-03-20", true, 5),
	}
	ref := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	got := FilterByRange(records, 365, ref)
	if len(got) != 1 || got[0].ID != "past" {
		t.Errorf("got %v, want only past", got)
	}
}

func TestFilterByRangeLocalReference(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	records := []model.ActivityRecord{rec("1", "Walking", "2025-03-15", true, 5)}

	// Late evening local time is still the 15th
	ref := time.Date(2025, 3, 15, 23, 30, 0, 0, loc)
	if got := FilterByRange(records, 0, ref); len(got) != 1 {
		t.Errorf("expected record on reference date to be included, got %d", len(got))
	}
}

func TestFilterByActivity(t *testing.T) {
	records := tenRecords()

	if got := FilterByActivity(records, nil); len(got) != len(records) {
		t.Errorf("nil filter: len = %d, want %d", len(got), len(records))
	}

	name := "Gym Workout"
	got := FilterByActivity(records, &name)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for _, r := range got {
		if r.Name != name {
			t.Errorf("name = %q, want %q", r.Name, name)
		}
	}

	partial := "Gym"
	if got := FilterByActivity(records, &partial); len(got) != 0 {
		t.Errorf("partial name should not match, got %d", len(got))
	}
}

func TestUniqueActivityNames(t *testing.T) {
	got := UniqueActivityNames(tenRecords())
	want := []string{"Gym Workout", "Morning Run", "Yoga Session"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if got := UniqueActivityNames(nil); len(got) != 0 {
		t.Errorf("expected empty, got %v", got)
	}
}

func TestWeeklyCalendar(t *testing.T) {
	// 2025-03-19 is a Wednesday; its week runs 17..23
	ref := time.Date(2025, 3, 19, 10, 0, 0, 0, time.UTC)
	week := WeeklyCalendar(tenRecords(), ref)

	wantDone := [7]bool{true, false, true, true, true, true, true}
	for i, d := range week {
		if d.Done != wantDone[i] {
			t.Errorf("day %d (%s) done = %v, want %v", i, d.Date.Format(model.DateLayout), d.Done, wantDone[i])
		}
	}
	if week[0].Label != "M" || week[6].Label != "S" {
		t.Errorf("labels = %q..%q, want M..S", week[0].Label, week[6].Label)
	}
	if week[0].Date.Format(model.DateLayout) != "2025-03-17" {
		t.Errorf("monday = %s, want 2025-03-17", week[0].Date.Format(model.DateLayout))
	}
}

func TestWeeklyCalendarSunday(t *testing.T) {
	ref := time.Date(2025, 3, 23, 0, 0, 0, 0, time.UTC) // Sunday
	week := WeeklyCalendar(nil, ref)
	if week[6].Date.Format(model.DateLayout) != "2025-03-23" {
		t.Errorf("sunday = %s, want 2025-03-23", week[6].Date.Format(model.DateLayout))
	}
}

func TestLongestStreak(t *testing.T) {
	// Completed: 16,17 | 19,20,21,22,23
	if got := LongestStreak(tenRecords()); got != 5 {
		t.Errorf("longest = %d, want 5", got)
	}
	if got := LongestStreak(nil); got != 0 {
		t.Errorf("longest of empty = %d, want 0", got)
	}

	sameDay := []model.ActivityRecord{
		rec("1", "Walking", "2025-03-01", true, 5),
		rec("2", "Cycling", "2025-03-01", true, 10),
	}
	if got := LongestStreak(sameDay); got != 1 {
		t.Errorf("longest = %d, want 1", got)
	}
}

func TestSumPoints(t *testing.T) {
	if got := SumPoints(tenRecords()); got != 83 {
		t.Errorf("sum = %d, want 83", got)
	}
}
