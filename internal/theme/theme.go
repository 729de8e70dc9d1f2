// Package theme owns the process-wide dark mode flag. Every reader goes
// through Store; anything that keeps its own copy (the profile settings
// row, connected clients) subscribes and is told about each change.
package theme

import "sync"

type Palette struct {
	Background string `json:"background"`
	Card       string `json:"card"`
	Text       string `json:"text"`
	Border     string `json:"border"`
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
	StatusBar  string `json:"status_bar"`
}

var (
	Light = Palette{
		Background: "#f8f9fa",
		Card:       "#ffffff",
		Text:       "#212529",
		Border:     "#e9ecef",
		Primary:    "#5E60CE",
		Secondary:  "#4CAF50",
		Accent:     "#FF6B6B",
		StatusBar:  "dark",
	}
	Dark = Palette{
		Background: "#121212",
		Card:       "#1e1e1e",
		Text:       "#f8f9fa",
		Border:     "#333333",
		Primary:    "#7B7FE0",
		Secondary:  "#66BB6A",
		Accent:     "#FF8A8A",
		StatusBar:  "light",
	}
)

// State is a snapshot of the theme delivered to subscribers.
type State struct {
	IsDarkMode bool    `json:"is_dark_mode"`
	Palette    Palette `json:"palette"`
}

type Store struct {
	// changeMu serializes changes with their notifications so subscribers
	// see them in the order they were made.
	changeMu sync.Mutex

	mu     sync.Mutex
	dark   bool
	nextID int
	subs   map[int]func(State)
}

// NewStore creates a store with the given initial mode.
func NewStore(dark bool) *Store {
	return &Store{
		dark: dark,
		subs: make(map[int]func(State)),
	}
}

func (s *Store) IsDarkMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dark
}

// Palette returns the colors for the current mode.
func (s *Store) Palette() Palette {
	return s.State().Palette
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return stateFor(s.dark)
}

// Toggle flips dark mode, notifies subscribers and returns the new value.
// Subscribers must not call Toggle or Set.
func (s *Store) Toggle() bool {
	s.changeMu.Lock()
	defer s.changeMu.Unlock()

	s.mu.Lock()
	s.dark = !s.dark
	st, subs := stateFor(s.dark), s.snapshot()
	s.mu.Unlock()

	notify(subs, st)
	return st.IsDarkMode
}

// Set assigns dark mode. Subscribers are only notified when the value changes.
func (s *Store) Set(dark bool) {
	s.changeMu.Lock()
	defer s.changeMu.Unlock()

	s.mu.Lock()
	if s.dark == dark {
		s.mu.Unlock()
		return
	}
	s.dark = dark
	st, subs := stateFor(s.dark), s.snapshot()
	s.mu.Unlock()

	notify(subs, st)
}

// Subscribe registers fn to be called synchronously after every change.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// must hold s.mu
func (s *Store) snapshot() []func(State) {
	subs := make([]func(State), 0, len(s.subs))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.subs[id]; ok {
			subs = append(subs, fn)
		}
	}
	return subs
}

func notify(subs []func(State), st State) {
	for _, fn := range subs {
		fn(st)
	}
}

func stateFor(dark bool) State {
	if dark {
		return State{IsDarkMode: true, Palette: Dark}
	}
	return State{IsDarkMode: false, Palette: Light}
}
