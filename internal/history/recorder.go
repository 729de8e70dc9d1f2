package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/streek/internal/catalog"
	"github.com/dukerupert/streek/internal/model"
)

type RecordCreator interface {
	Create(r model.ActivityRecord) (*model.ActivityRecord, error)
}

// Recorder appends a completed activity record for every applied challenge
// completion, scoring it from the catalog.
type Recorder struct {
	records RecordCreator
	catalog catalog.Provider
}

func NewRecorder(records RecordCreator, c catalog.Provider) *Recorder {
	return &Recorder{records: records, catalog: c}
}

func (r *Recorder) ChallengeCompleted(ctx context.Context, c model.Challenge, at time.Time) error {
	_, err := r.records.Create(model.ActivityRecord{
		ID:        uuid.NewString(),
		Name:      c.Name,
		Date:      at,
		Completed: true,
		Points:    r.catalog.PointsFor(c.Name),
	})
	if err != nil {
		return fmt.Errorf("record completion of %q: %w", c.Name, err)
	}
	return nil
}
