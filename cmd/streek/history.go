package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dukerupert/streek/internal/catalog"
	"github.com/dukerupert/streek/internal/database"
	"github.com/dukerupert/streek/internal/history"
	"github.com/dukerupert/streek/internal/model"
	"github.com/dukerupert/streek/internal/store"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	doneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	missStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	statStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

type historyCmd struct {
	DBPath   string `name:"db-path" help:"SQLite database path." env:"STREEK_DB_PATH" default:":memory:"`
	Range    string `help:"Date range label." default:"Last 7 Days"`
	Activity string `help:"Only show records for this activity."`
	Seed     bool   `help:"Load the demo session on an empty database." env:"STREEK_SEED" default:"true" negatable:""`
}

func (c *historyCmd) Run() error {
	cat := catalog.NewStatic()
	rng, ok := cat.LookupRange(c.Range)
	if !ok {
		return fmt.Errorf("unknown date range %q", c.Range)
	}

	db, err := database.Open(c.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	now := time.Now()
	if c.Seed {
		if err := store.SeedDefaults(db, now); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	records, err := store.NewActivityStore(db).List()
	if err != nil {
		return err
	}

	var activity *string
	if name := strings.TrimSpace(c.Activity); name != "" {
		activity = &name
	}
	renderHistory(os.Stdout, records, rng, activity, now)
	return nil
}

func renderHistory(w io.Writer, all []model.ActivityRecord, rng model.DateRange, activity *string, now time.Time) {
	filtered := history.FilterByActivity(history.FilterByRange(all, rng.Days, now), activity)
	stats := history.ComputeStats(filtered)

	heading := rng.Label
	if activity != nil {
		heading += " · " + *activity
	}
	fmt.Fprintln(w, titleStyle.Render(heading))

	var week strings.Builder
	for _, d := range history.WeeklyCalendar(all, now) {
		style := missStyle
		if d.Done {
			style = doneStyle
		}
		week.WriteString(style.Render(d.Label) + " ")
	}
	fmt.Fprintln(w, strings.TrimSpace(week.String()))

	fmt.Fprintln(w, statStyle.Render(fmt.Sprintf(
		"Completed %d/%d (%d%%)   Points %d   Longest streak %d days",
		stats.CompletedCount, stats.TotalCount, stats.CompletionRatePercent,
		history.SumPoints(filtered), history.LongestStreak(all),
	)))

	if len(filtered) == 0 {
		fmt.Fprintln(w, missStyle.Render("No activities recorded for this period"))
		return
	}
	for _, r := range filtered {
		mark, style := "✓", doneStyle
		if !r.Completed {
			mark, style = "✗", missStyle
		}
		fmt.Fprintf(w, "%s  %s  %-14s %3d pts\n", style.Render(mark), r.DateString(), r.Name, r.Points)
	}
}
