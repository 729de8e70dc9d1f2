package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/streek/internal/model"
)

// SeedDefaults loads the demo session in a single transaction: three
// challenges, ten days of history ending at today, the reward shelf, the
// Alex Johnson profile and five achievements. It does nothing if any
// challenge already exists.
func SeedDefaults(db *sql.DB, today time.Time) error {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM challenges`).Scan(&n); err != nil {
		return fmt.Errorf("count challenges: %w", err)
	}
	if n > 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	// Challenges
	challenges := []struct {
		id, name, frequency string
		streak              int
	}{
		{"1", "Morning Run", "Daily", 5},
		{"2", "Gym Workout", "Mon, Wed, Fri", 3},
		{"3", "Yoga Session", "Daily", 10},
	}
	for i, c := range challenges {
		if _, err := tx.Exec(
			`INSERT INTO challenges (id, name, frequency, streak, completed, created_at) VALUES (?, ?, ?, ?, 0, ?)`,
			c.id, c.name, c.frequency, c.streak, now.Add(time.Duration(i)*time.Millisecond),
		); err != nil {
			return fmt.Errorf("seed challenge %q: %w", c.name, err)
		}
	}

	// History, newest first, one record per day
	history := []struct {
		name      string
		completed bool
		points    int
	}{
		{"Morning Run", true, 10},
		{"Gym Workout", true, 15},
		{"Yoga Session", true, 8},
		{"Morning Run", true, 10},
		{"Gym Workout", true, 15},
		{"Yoga Session", false, 0},
		{"Morning Run", true, 10},
		{"Gym Workout", true, 15},
		{"Yoga Session", false, 0},
		{"Morning Run", true, 10},
	}
	for i, h := range history {
		if _, err := tx.Exec(
			`INSERT INTO activity_records (id, name, date, completed, points) VALUES (?, ?, ?, ?, ?)`,
			fmt.Sprint(i+1), h.name, today.AddDate(0, 0, -i).Format(model.DateLayout), boolInt(h.completed), h.points,
		); err != nil {
			return fmt.Errorf("seed activity record %d: %w", i+1, err)
		}
	}

	// Rewards
	rewards := []model.Reward{
		{ID: "1", Name: "Fitness Gear Discount", Points: 500, Icon: "shirt"},
		{ID: "2", Name: "Premium Membership", Points: 1000, Icon: "star"},
		{ID: "3", Name: "Nutrition Consultation", Points: 750, Icon: "nutrition"},
		{ID: "4", Name: "Personal Training Session", Points: 1200, Icon: "fitness"},
		{ID: "5", Name: "Recovery Day Badge", Points: 100, Claimed: true, Icon: "medal"},
	}
	for i, r := range rewards {
		if _, err := tx.Exec(
			`INSERT INTO rewards (id, name, points, claimed, icon, sort_order) VALUES (?, ?, ?, ?, ?, ?)`,
			r.ID, r.Name, r.Points, boolInt(r.Claimed), r.Icon, i+1,
		); err != nil {
			return fmt.Errorf("seed reward %q: %w", r.Name, err)
		}
	}

	// Profile
	if _, err := tx.Exec(
		`INSERT INTO profile (id, name, email, fitness_goal, timezone,
		                      dark_mode, notifications, offline_mode, social_sharing, updated_at)
		 VALUES (1, 'Alex Johnson', 'alex.johnson@example.com', 'Build strength and improve endurance',
		         'Asia/Kolkata', 0, 1, 0, 1, ?)`,
		now,
	); err != nil {
		return fmt.Errorf("seed profile: %w", err)
	}

	// Achievements
	achievements := []model.Achievement{
		{ID: "1", Name: "First Workout", Description: "Complete your first workout", Earned: true, Icon: "trophy"},
		{ID: "2", Name: "7-Day Streak", Description: "Complete activities for 7 consecutive days", Earned: true, Icon: "flame"},
		{ID: "3", Name: "30-Day Streak", Description: "Complete activities for 30 consecutive days", Icon: "flame"},
		{ID: "4", Name: "Variety Master", Description: "Try 5 different workout types", Earned: true, Icon: "ribbon"},
		{ID: "5", Name: "Early Bird", Description: "Complete 10 workouts before 8 AM", Icon: "sunny"},
	}
	for i, a := range achievements {
		if _, err := tx.Exec(
			`INSERT INTO achievements (id, name, description, earned, icon, sort_order) VALUES (?, ?, ?, ?, ?, ?)`,
			a.ID, a.Name, a.Description, boolInt(a.Earned), a.Icon, i+1,
		); err != nil {
			return fmt.Errorf("seed achievement %q: %w", a.Name, err)
		}
	}

	return tx.Commit()
}
