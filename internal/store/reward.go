package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/streek/internal/model"
)

type RewardStore struct {
	db *sql.DB
}

func NewRewardStore(db *sql.DB) *RewardStore {
	return &RewardStore{db: db}
}

func scanReward(scanner interface{ Scan(...any) error }) (*model.Reward, error) {
	var r model.Reward
	var claimed int
	var claimedAt sql.NullTime

	err := scanner.Scan(&r.ID, &r.Name, &r.Points, &claimed, &r.Icon, &claimedAt)
	if err != nil {
		return nil, err
	}

	r.Claimed = claimed != 0
	if claimedAt.Valid {
		t := claimedAt.Time
		r.ClaimedAt = &t
	}
	return &r, nil
}

const rewardCols = `id, name, points, claimed, icon, claimed_at`

func (s *RewardStore) Create(r model.Reward) (*model.Reward, error) {
	var claimed int
	if r.Claimed {
		claimed = 1
	}

	_, err := s.db.Exec(
		`INSERT INTO rewards (id, name, points, claimed, icon, sort_order)
		 VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(sort_order), 0) + 1 FROM rewards))`,
		r.ID, r.Name, r.Points, claimed, r.Icon,
	)
	if err != nil {
		return nil, fmt.Errorf("insert reward: %w", err)
	}
	return s.GetByID(r.ID)
}

func (s *RewardStore) GetByID(id string) (*model.Reward, error) {
	row := s.db.QueryRow(`SELECT `+rewardCols+` FROM rewards WHERE id = ?`, id)
	r, err := scanReward(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reward: %w", err)
	}
	return r, nil
}

// List returns the reward catalog in display order.
func (s *RewardStore) List() ([]model.Reward, error) {
	rows, err := s.db.Query(`SELECT ` + rewardCols + ` FROM rewards ORDER BY sort_order ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	defer rows.Close()

	var rewards []model.Reward
	for rows.Next() {
		r, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		rewards = append(rewards, *r)
	}
	return rewards, rows.Err()
}

// MarkClaimed flips claimed from false to true. It reports false when the
// reward was already claimed or does not exist.
func (s *RewardStore) MarkClaimed(id string, at time.Time) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE rewards SET claimed = 1, claimed_at = ? WHERE id = ? AND claimed = 0`,
		at.UTC(), id,
	)
	if err != nil {
		return false, fmt.Errorf("mark reward claimed: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
