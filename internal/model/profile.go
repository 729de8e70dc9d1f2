package model

import "time"

type Settings struct {
	DarkMode      bool `json:"dark_mode"`
	Notifications bool `json:"notifications"`
	OfflineMode   bool `json:"offline_mode"`
	SocialSharing bool `json:"social_sharing"`
}

type Profile struct {
	Name         string    `json:"name" validate:"required"`
	Email        string    `json:"email" validate:"omitempty,email"`
	ProfileImage *string   `json:"profile_image"`
	FitnessGoal  string    `json:"fitness_goal"`
	Timezone     string    `json:"timezone"`
	Settings     Settings  `json:"settings"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Earned      bool   `json:"earned"`
	Icon        string `json:"icon"`
}
