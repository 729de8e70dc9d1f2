package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/streek/internal/model"
)

type AchievementStore struct {
	db *sql.DB
}

func NewAchievementStore(db *sql.DB) *AchievementStore {
	return &AchievementStore{db: db}
}

func (s *AchievementStore) Create(a model.Achievement) error {
	_, err := s.db.Exec(
		`INSERT INTO achievements (id, name, description, earned, icon, sort_order)
		 VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(sort_order), 0) + 1 FROM achievements))`,
		a.ID, a.Name, a.Description, boolInt(a.Earned), a.Icon,
	)
	if err != nil {
		return fmt.Errorf("insert achievement: %w", err)
	}
	return nil
}

func (s *AchievementStore) List() ([]model.Achievement, error) {
	rows, err := s.db.Query(`SELECT id, name, description, earned, icon FROM achievements ORDER BY sort_order ASC`)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	defer rows.Close()

	var achievements []model.Achievement
	for rows.Next() {
		var a model.Achievement
		var earned int
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &earned, &a.Icon); err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		a.Earned = earned != 0
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}
