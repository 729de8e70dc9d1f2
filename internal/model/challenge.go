package model

import "time"

type Challenge struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Frequency       string     `json:"frequency"`
	Streak          int        `json:"streak"`
	Completed       bool       `json:"completed"`
	LastCompletedAt *time.Time `json:"last_completed_at"`
	LastProofURI    string     `json:"last_proof_uri,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
