package rewards

import (
	"context"
	"fmt"
	"time"

	"github.com/dukerupert/streek/internal/catalog"
)

// PointsProvider reports the points earned for a date range label.
type PointsProvider interface {
	PointsForRange(ctx context.Context, label string) (int, error)
}

// TableProvider reads the fixed per-range table from the catalog.
type TableProvider struct {
	catalog catalog.Provider
}

func NewTableProvider(c catalog.Provider) *TableProvider {
	return &TableProvider{catalog: c}
}

func (p *TableProvider) PointsForRange(ctx context.Context, label string) (int, error) {
	return p.catalog.PointsForRange(label)
}

// PointSummer sums recorded activity points dated within [from, to].
type PointSummer interface {
	SumPointsBetween(from, to time.Time) (int, error)
}

// HistoryProvider derives points from the activity history instead of the
// fixed table.
type HistoryProvider struct {
	catalog catalog.Provider
	records PointSummer
	now     func() time.Time
}

func NewHistoryProvider(c catalog.Provider, records PointSummer) *HistoryProvider {
	return &HistoryProvider{catalog: c, records: records, now: time.Now}
}

func (p *HistoryProvider) PointsForRange(ctx context.Context, label string) (int, error) {
	r, ok := p.catalog.LookupRange(label)
	if !ok {
		return 0, fmt.Errorf("points for %q: %w", label, catalog.ErrUnknownRange)
	}
	today := p.now()
	from := today.AddDate(0, 0, -r.Days)
	return p.records.SumPointsBetween(from, today)
}

// NewPointsProvider picks the provider named by source: "history" sums the
// activity log, anything else uses the fixed table.
func NewPointsProvider(source string, c catalog.Provider, records PointSummer) PointsProvider {
	if source == "history" {
		return NewHistoryProvider(c, records)
	}
	return NewTableProvider(c)
}
