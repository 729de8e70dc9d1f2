package store

import "github.com/dukerupert/streek/internal/model"

func modelChallenge(id string, streak int) model.Challenge {
	return model.Challenge{ID: id, Name: "Challenge " + id, Frequency: "Daily", Streak: streak}
}
