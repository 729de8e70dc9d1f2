package model

import "time"

type Reward struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Points    int        `json:"points"`
	Claimed   bool       `json:"claimed"`
	Icon      string     `json:"icon"`
	ClaimedAt *time.Time `json:"claimed_at"`
}
