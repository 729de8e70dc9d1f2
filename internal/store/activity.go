package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/streek/internal/model"
)

// ErrConflict is returned when a record with the same id already exists.
var ErrConflict = errors.New("record already exists")

type ActivityStore struct {
	db *sql.DB
}

func NewActivityStore(db *sql.DB) *ActivityStore {
	return &ActivityStore{db: db}
}

func scanActivity(scanner interface{ Scan(...any) error }) (*model.ActivityRecord, error) {
	var r model.ActivityRecord
	var date string
	var completed int

	if err := scanner.Scan(&r.ID, &r.Name, &date, &completed, &r.Points); err != nil {
		return nil, err
	}

	d, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", date, err)
	}
	r.Date = d
	r.Completed = completed != 0
	return &r, nil
}

const activityCols = `id, name, date, completed, points`

// Create appends a record. Points are forced to zero for incomplete records.
// A record whose id is taken is rejected with ErrConflict.
func (s *ActivityStore) Create(r model.ActivityRecord) (*model.ActivityRecord, error) {
	var completed int
	points := r.Points
	if r.Completed {
		completed = 1
	} else {
		points = 0
	}

	result, err := s.db.Exec(
		`INSERT INTO activity_records (id, name, date, completed, points) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		r.ID, r.Name, r.DateString(), completed, points,
	)
	if err != nil {
		return nil, fmt.Errorf("insert activity record: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("insert activity record %q: %w", r.ID, ErrConflict)
	}
	return s.GetByID(r.ID)
}

func (s *ActivityStore) GetByID(id string) (*model.ActivityRecord, error) {
	row := s.db.QueryRow(`SELECT `+activityCols+` FROM activity_records WHERE id = ?`, id)
	r, err := scanActivity(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get activity record: %w", err)
	}
	return r, nil
}

// List returns every record in insertion order.
func (s *ActivityStore) List() ([]model.ActivityRecord, error) {
	rows, err := s.db.Query(`SELECT ` + activityCols + ` FROM activity_records ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("list activity records: %w", err)
	}
	defer rows.Close()

	var records []model.ActivityRecord
	for rows.Next() {
		r, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity record: %w", err)
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

// SumPointsBetween totals points of records dated within [from, to] inclusive.
func (s *ActivityStore) SumPointsBetween(from, to time.Time) (int, error) {
	var total int
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(points), 0) FROM activity_records WHERE date >= ? AND date <= ?`,
		from.Format(model.DateLayout), to.Format(model.DateLayout),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum points: %w", err)
	}
	return total, nil
}
