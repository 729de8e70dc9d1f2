package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/streek/internal/model"
)

type ChallengeStore struct {
	db *sql.DB
}

func NewChallengeStore(db *sql.DB) *ChallengeStore {
	return &ChallengeStore{db: db}
}

func scanChallenge(scanner interface{ Scan(...any) error }) (*model.Challenge, error) {
	var c model.Challenge
	var completed int
	var lastCompleted sql.NullTime

	err := scanner.Scan(
		&c.ID, &c.Name, &c.Frequency, &c.Streak, &completed,
		&lastCompleted, &c.LastProofURI, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Completed = completed != 0
	if lastCompleted.Valid {
		t := lastCompleted.Time
		c.LastCompletedAt = &t
	}
	return &c, nil
}

const challengeCols = `id, name, frequency, streak, completed, last_completed_at, last_proof_uri, created_at`

// Create inserts a new challenge with a zero streak.
func (s *ChallengeStore) Create(id, name, frequency string) (*model.Challenge, error) {
	_, err := s.db.Exec(
		`INSERT INTO challenges (id, name, frequency, created_at) VALUES (?, ?, ?, ?)`,
		id, name, frequency, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert challenge: %w", err)
	}
	return s.GetByID(id)
}

// Seed inserts a challenge with an existing streak. Used for session defaults.
func (s *ChallengeStore) Seed(c model.Challenge) error {
	var completed int
	if c.Completed {
		completed = 1
	}
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO challenges (id, name, frequency, streak, completed, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Frequency, c.Streak, completed, createdAt,
	)
	if err != nil {
		return fmt.Errorf("seed challenge: %w", err)
	}
	return nil
}

func (s *ChallengeStore) GetByID(id string) (*model.Challenge, error) {
	row := s.db.QueryRow(`SELECT `+challengeCols+` FROM challenges WHERE id = ?`, id)
	c, err := scanChallenge(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get challenge: %w", err)
	}
	return c, nil
}

// List returns all challenges in the order they were added.
func (s *ChallengeStore) List() ([]model.Challenge, error) {
	rows, err := s.db.Query(`SELECT ` + challengeCols + ` FROM challenges ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	defer rows.Close()

	var challenges []model.Challenge
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("scan challenge: %w", err)
		}
		challenges = append(challenges, *c)
	}
	return challenges, rows.Err()
}

// Count returns the number of stored challenges.
func (s *ChallengeStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM challenges`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count challenges: %w", err)
	}
	return n, nil
}

// RecordCompletion marks the challenge completed and bumps its streak by one
// in a single statement. It returns nil if no challenge has the given id. The
// returned streak is the one this completion produced, even if another
// completion lands before the row is read back.
func (s *ChallengeStore) RecordCompletion(id, proofURI string, at time.Time) (*model.Challenge, error) {
	var streak int
	err := s.db.QueryRow(
		`UPDATE challenges
		 SET completed = 1, streak = streak + 1, last_completed_at = ?, last_proof_uri = ?
		 WHERE id = ?
		 RETURNING streak`,
		at.UTC(), proofURI, id,
	).Scan(&streak)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("record completion: %w", err)
	}
	return s.withStreak(id, streak)
}

// RecordCompletionOnce behaves like RecordCompletion but only applies when the
// challenge has not been completed since dayStart. The second return value
// reports whether the update was applied.
func (s *ChallengeStore) RecordCompletionOnce(id, proofURI string, at, dayStart time.Time) (*model.Challenge, bool, error) {
	var streak int
	err := s.db.QueryRow(
		`UPDATE challenges
		 SET completed = 1, streak = streak + 1, last_completed_at = ?, last_proof_uri = ?
		 WHERE id = ? AND (last_completed_at IS NULL OR last_completed_at < ?)
		 RETURNING streak`,
		at.UTC(), proofURI, id, dayStart.UTC(),
	).Scan(&streak)
	if err == sql.ErrNoRows {
		c, err := s.GetByID(id)
		return c, false, err
	}
	if err != nil {
		return nil, false, fmt.Errorf("record completion: %w", err)
	}
	c, err := s.withStreak(id, streak)
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

func (s *ChallengeStore) withStreak(id string, streak int) (*model.Challenge, error) {
	c, err := s.GetByID(id)
	if err != nil || c == nil {
		return c, err
	}
	c.Streak = streak
	return c, nil
}
