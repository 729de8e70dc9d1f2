package recurrence

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrUnrecognized is returned for free-text frequencies such as
// "Twice a week" that do not name concrete days.
var ErrUnrecognized = errors.New("unrecognized frequency")

var dayWords = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// FromFrequency maps a challenge frequency label to a rule. Accepted forms:
// "Daily", "Weekly", "Monthly", "Weekdays", "Weekends", day lists like
// "Mon, Wed, Fri" or "Tuesday and Thursday", "Every 3 days",
// "Every 2 weeks", and raw RRULE strings.
func FromFrequency(label string) (Rule, error) {
	s := strings.ToLower(strings.TrimSpace(label))
	if s == "" {
		return Rule{}, ErrUnrecognized
	}
	if strings.HasPrefix(s, "freq=") || strings.HasPrefix(s, "rrule:") {
		return Parse(strings.ToUpper(s))
	}

	switch s {
	case "daily", "every day", "everyday":
		return Rule{Freq: Daily, Interval: 1}, nil
	case "weekly", "every week", "once a week":
		return Rule{Freq: Weekly, Interval: 1}, nil
	case "monthly", "every month", "once a month":
		return Rule{Freq: Monthly, Interval: 1}, nil
	case "weekdays", "every weekday":
		return Rule{Freq: Weekly, Interval: 1, ByDay: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		}}, nil
	case "weekends", "every weekend":
		return Rule{Freq: Weekly, Interval: 1, ByDay: []time.Weekday{time.Saturday, time.Sunday}}, nil
	case "every other day":
		return Rule{Freq: Daily, Interval: 2}, nil
	case "every other week", "biweekly":
		return Rule{Freq: Weekly, Interval: 2}, nil
	}

	if r, ok := parseEvery(s); ok {
		return r, nil
	}
	if days, ok := parseDayList(s); ok {
		return Rule{Freq: Weekly, Interval: 1, ByDay: days}, nil
	}
	return Rule{}, ErrUnrecognized
}

// parseEvery handles "every N days|weeks|months".
func parseEvery(s string) (Rule, bool) {
	fields := strings.Fields(s)
	if len(fields) != 3 || fields[0] != "every" {
		return Rule{}, false
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 1 {
		return Rule{}, false
	}
	switch strings.TrimSuffix(fields[2], "s") {
	case "day":
		return Rule{Freq: Daily, Interval: n}, true
	case "week":
		return Rule{Freq: Weekly, Interval: n}, true
	case "month":
		return Rule{Freq: Monthly, Interval: n}, true
	}
	return Rule{}, false
}

func parseDayList(s string) ([]time.Weekday, bool) {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '/' || r == '&' || r == ' '
	})
	var days []time.Weekday
	seen := make(map[time.Weekday]bool)
	for _, w := range words {
		if w == "and" {
			continue
		}
		d, ok := dayWords[strings.TrimSuffix(w, ".")]
		if !ok {
			return nil, false
		}
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	return days, len(days) > 0
}

// DueOn reports whether a challenge with the given frequency, created at
// anchor, is due on day. Unrecognized frequencies are due every day.
func DueOn(frequency string, anchor, day time.Time) bool {
	r, err := FromFrequency(frequency)
	if err != nil {
		return true
	}
	return r.OccursOn(anchor, day)
}
