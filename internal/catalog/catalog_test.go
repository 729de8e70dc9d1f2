package catalog

import (
	"errors"
	"testing"
)

func TestFrequenciesIncludeCustom(t *testing.T) {
	c := NewStatic()
	freqs := c.Frequencies()
	if len(freqs) != 6 {
		t.Fatalf("expected 6 frequencies, got %d", len(freqs))
	}
	if freqs[len(freqs)-1] != CustomFrequency {
		t.Errorf("last frequency = %q, want %q", freqs[len(freqs)-1], CustomFrequency)
	}
}

func TestPointsFor(t *testing.T) {
	c := NewStatic()
	tests := []struct {
		name string
		want int
	}{
		{"Morning Run", 10},
		{"Gym Workout", 15},
		{"Yoga Session", 8},
		{"Walking", 5},
		{"Unknown", 0},
	}
	for _, tt := range tests {
		if got := c.PointsFor(tt.name); got != tt.want {
			t.Errorf("PointsFor(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestPointsForRange(t *testing.T) {
	c := NewStatic()

	got, err := c.PointsForRange("Last 30 Days")
	if err != nil {
		t.Fatalf("points for range: %v", err)
	}
	if got != 720 {
		t.Errorf("points = %d, want 720", got)
	}

	_, err = c.PointsForRange("Last Decade")
	if !errors.Is(err, ErrUnknownRange) {
		t.Errorf("err = %v, want ErrUnknownRange", err)
	}
}

func TestLookupRange(t *testing.T) {
	c := NewStatic()

	r, ok := c.LookupRange("Last 12 Months")
	if !ok {
		t.Fatal("expected range to be found")
	}
	if r.Days != 365 {
		t.Errorf("days = %d, want 365", r.Days)
	}

	if _, ok := c.LookupRange("Yesterday"); ok {
		t.Error("expected unknown label to be missing")
	}

	if c.DefaultRange().Label != "Last 7 Days" {
		t.Errorf("default range = %q, want %q", c.DefaultRange().Label, "Last 7 Days")
	}
}

func TestListsAreCopies(t *testing.T) {
	c := NewStatic()
	types := c.ActivityTypes()
	types[0].Name = "Mutated"
	if c.ActivityTypes()[0].Name != "Running" {
		t.Error("ActivityTypes should return a copy")
	}
}
