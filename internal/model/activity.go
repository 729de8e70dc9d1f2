package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the day-resolution format used for activity record dates.
const DateLayout = "2006-01-02"

type ActivityRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	Completed bool      `json:"completed"`
	Points    int       `json:"points"`
}

// DateString returns the record date formatted as YYYY-MM-DD.
func (r ActivityRecord) DateString() string {
	return r.Date.Format(DateLayout)
}

type activityRecordJSON struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
	Points    int    `json:"points"`
}

func (r ActivityRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(activityRecordJSON{
		ID:        r.ID,
		Name:      r.Name,
		Date:      r.DateString(),
		Completed: r.Completed,
		Points:    r.Points,
	})
}

func (r *ActivityRecord) UnmarshalJSON(data []byte) error {
	var raw activityRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d, err := time.Parse(DateLayout, raw.Date)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", raw.Date, err)
	}
	*r = ActivityRecord{
		ID:        raw.ID,
		Name:      raw.Name,
		Date:      d,
		Completed: raw.Completed,
		Points:    raw.Points,
	}
	return nil
}

type ActivityType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type ActivityPoints struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
	Icon   string `json:"icon"`
}

type DateRange struct {
	Label string `json:"label"`
	Days  int    `json:"days"`
}
