package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/streek/internal/model"
)

// settingColumns maps toggleable setting names to their profile columns.
var settingColumns = map[string]string{
	"darkMode":      "dark_mode",
	"notifications": "notifications",
	"offlineMode":   "offline_mode",
	"socialSharing": "social_sharing",
}

// IsSetting reports whether name is a known boolean setting.
func IsSetting(name string) bool {
	_, ok := settingColumns[name]
	return ok
}

type ProfileStore struct {
	db *sql.DB
}

func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Get returns the session profile, or nil if none has been created.
func (s *ProfileStore) Get() (*model.Profile, error) {
	var p model.Profile
	var image sql.NullString
	var dark, notif, offline, social int

	err := s.db.QueryRow(
		`SELECT name, email, profile_image, fitness_goal, timezone,
		        dark_mode, notifications, offline_mode, social_sharing, updated_at
		 FROM profile WHERE id = 1`,
	).Scan(&p.Name, &p.Email, &image, &p.FitnessGoal, &p.Timezone,
		&dark, &notif, &offline, &social, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	if image.Valid {
		p.ProfileImage = &image.String
	}
	p.Settings = model.Settings{
		DarkMode:      dark != 0,
		Notifications: notif != 0,
		OfflineMode:   offline != 0,
		SocialSharing: social != 0,
	}
	return &p, nil
}

// Replace writes every profile field in one statement, creating the row if
// needed. dark_mode is only written on insert; afterwards it changes through
// SetSetting and ToggleSetting alone.
func (s *ProfileStore) Replace(p model.Profile) (*model.Profile, error) {
	var image sql.NullString
	if p.ProfileImage != nil {
		image = sql.NullString{String: *p.ProfileImage, Valid: true}
	}

	_, err := s.db.Exec(
		`INSERT INTO profile (id, name, email, profile_image, fitness_goal, timezone,
		                      dark_mode, notifications, offline_mode, social_sharing, updated_at)
		 VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name, email = excluded.email, profile_image = excluded.profile_image,
		   fitness_goal = excluded.fitness_goal, timezone = excluded.timezone,
		   notifications = excluded.notifications,
		   offline_mode = excluded.offline_mode, social_sharing = excluded.social_sharing,
		   updated_at = excluded.updated_at`,
		p.Name, p.Email, image, p.FitnessGoal, p.Timezone,
		boolInt(p.Settings.DarkMode), boolInt(p.Settings.Notifications),
		boolInt(p.Settings.OfflineMode), boolInt(p.Settings.SocialSharing),
		time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("replace profile: %w", err)
	}
	return s.Get()
}

// ToggleSetting flips a boolean setting in place.
func (s *ProfileStore) ToggleSetting(name string) error {
	col, ok := settingColumns[name]
	if !ok {
		return fmt.Errorf("unknown setting %q", name)
	}
	_, err := s.db.Exec(
		`UPDATE profile SET `+col+` = 1 - `+col+`, updated_at = ? WHERE id = 1`,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("toggle setting %q: %w", name, err)
	}
	return nil
}

// SetSetting writes an explicit value for a boolean setting.
func (s *ProfileStore) SetSetting(name string, value bool) error {
	col, ok := settingColumns[name]
	if !ok {
		return fmt.Errorf("unknown setting %q", name)
	}
	_, err := s.db.Exec(
		`UPDATE profile SET `+col+` = ?, updated_at = ? WHERE id = 1`,
		boolInt(value), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", name, err)
	}
	return nil
}
