package recurrence

import "time"

// lookback bounds the search for the previous due date.
const lookback = 800

// OccursOn reports whether the rule, started on anchor's day, has an
// occurrence on day. Only calendar dates in day's location are compared.
func (r Rule) OccursOn(anchor, day time.Time) bool {
	a, d := civil(anchor.In(day.Location())), civil(day)
	if d.Before(a) {
		return false
	}
	interval := r.Interval
	if interval < 1 {
		interval = 1
	}

	switch r.Freq {
	case Daily:
		return daysBetween(a, d)%interval == 0
	case Weekly:
		weeks := daysBetween(weekStart(a), weekStart(d)) / 7
		if weeks%interval != 0 {
			return false
		}
		if len(r.ByDay) == 0 {
			return d.Weekday() == a.Weekday()
		}
		for _, wd := range r.ByDay {
			if d.Weekday() == wd {
				return true
			}
		}
		return false
	case Monthly:
		months := (d.Year()-a.Year())*12 + int(d.Month()-a.Month())
		if months%interval != 0 {
			return false
		}
		want := a.Day()
		if last := daysIn(d.Year(), d.Month()); want > last {
			want = last
		}
		return d.Day() == want
	}
	return false
}

// Previous returns the most recent occurrence on or before day, as
// midnight in day's location.
func (r Rule) Previous(anchor, day time.Time) (time.Time, bool) {
	d := civil(day)
	a := civil(anchor.In(day.Location()))
	for i := 0; i <= lookback && !d.Before(a); i++ {
		if r.OccursOn(a, d) {
			return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, day.Location()), true
		}
		d = d.AddDate(0, 0, -1)
	}
	return time.Time{}, false
}

// civil drops the clock and zone so day arithmetic ignores DST shifts.
func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween works on Unix seconds; Duration overflows for zero anchors.
func daysBetween(from, to time.Time) int {
	return int((to.Unix() - from.Unix()) / 86400)
}

func weekStart(t time.Time) time.Time {
	offset := int(t.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	return t.AddDate(0, 0, -offset)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
