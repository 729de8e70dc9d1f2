package profile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/dukerupert/streek/internal/database"
	"github.com/dukerupert/streek/internal/model"
	"github.com/dukerupert/streek/internal/store"
	"github.com/dukerupert/streek/internal/theme"
)

func alex() model.Profile {
	return model.Profile{
		Name:        "Alex Johnson",
		Email:       "alex.johnson@example.com",
		FitnessGoal: "Build strength and improve endurance",
		Timezone:    "Asia/Kolkata",
		Settings:    model.Settings{Notifications: true, SocialSharing: true},
	}
}

func setupService(t *testing.T) (*Service, *store.ProfileStore, *theme.Store) {
	t.Helper()
	db, err := database.Open(database.MemoryPath)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ps := store.NewProfileStore(db)
	if _, err := ps.Replace(alex()); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	th := theme.NewStore(false)
	svc := NewService(ps, store.NewAchievementStore(db), th, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(svc.Close)
	return svc, ps, th
}

func TestToggleDarkModeMirrorsTheme(t *testing.T) {
	svc, ps, th := setupService(t)
	ctx := context.Background()

	p, err := svc.ToggleSetting(ctx, DarkModeSetting)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !th.IsDarkMode() {
		t.Error("theme should be dark")
	}
	if !p.Settings.DarkMode {
		t.Error("profile should report dark mode")
	}

	stored, _ := ps.Get()
	if !stored.Settings.DarkMode {
		t.Error("stored mirror should be dark")
	}

	// Toggling the theme directly is reflected too
	th.Toggle()
	stored, _ = ps.Get()
	if stored.Settings.DarkMode {
		t.Error("stored mirror should follow theme back to light")
	}
}

func TestToggleSetting(t *testing.T) {
	svc, _, th := setupService(t)
	ctx := context.Background()

	p, err := svc.ToggleSetting(ctx, "notifications")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if p.Settings.Notifications {
		t.Error("notifications should be off")
	}
	if p.Settings.SocialSharing != true || p.Settings.OfflineMode != false {
		t.Errorf("other settings changed: %+v", p.Settings)
	}
	if th.IsDarkMode() {
		t.Error("theme should be untouched")
	}

	p, _ = svc.ToggleSetting(ctx, "notifications")
	if !p.Settings.Notifications {
		t.Error("notifications should be back on")
	}
}

func TestToggleUnknownSetting(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.ToggleSetting(context.Background(), "autoPlay")
	if !errors.Is(err, ErrUnknownSetting) {
		t.Errorf("err = %v, want ErrUnknownSetting", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, _, th := setupService(t)
	ctx := context.Background()
	th.Set(true)

	draft := alex()
	draft.Name = "  Sam Rivera "
	draft.FitnessGoal = "Run a marathon"
	img := "file:///avatar.jpg"
	draft.ProfileImage = &img
	draft.Settings.DarkMode = false
	draft.Settings.OfflineMode = true

	p, err := svc.UpdateProfile(ctx, draft)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if p.Name != "Sam Rivera" || p.FitnessGoal != "Run a marathon" {
		t.Errorf("profile = %+v", p)
	}
	if p.ProfileImage == nil || *p.ProfileImage != img {
		t.Errorf("profile image = %v, want %q", p.ProfileImage, img)
	}
	if !p.Settings.OfflineMode {
		t.Error("offline mode should be saved")
	}
	if !p.Settings.DarkMode || !th.IsDarkMode() {
		t.Error("draft dark mode must not override the theme")
	}
}

// racingStore flips the theme between UpdateProfile reading it and the
// profile row being written.
type racingStore struct {
	*store.ProfileStore
	theme *theme.Store
}

func (r racingStore) Replace(p model.Profile) (*model.Profile, error) {
	r.theme.Toggle()
	return r.ProfileStore.Replace(p)
}

func TestUpdateProfileConcurrentThemeToggle(t *testing.T) {
	db, err := database.Open(database.MemoryPath)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ps := store.NewProfileStore(db)
	if _, err := ps.Replace(alex()); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	th := theme.NewStore(false)
	svc := NewService(racingStore{ps, th}, store.NewAchievementStore(db), th, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(svc.Close)

	if _, err := svc.UpdateProfile(context.Background(), alex()); err != nil {
		t.Fatalf("update: %v", err)
	}

	stored, _ := ps.Get()
	if !th.IsDarkMode() {
		t.Fatal("theme should be dark after the toggle")
	}
	if !stored.Settings.DarkMode {
		t.Errorf("stored dark_mode = false, want true to match the theme store")
	}
}

func TestUpdateProfileValidation(t *testing.T) {
	tests := []struct {
		name  string
		apply func(*model.Profile)
	}{
		{"empty name", func(p *model.Profile) { p.Name = "" }},
		{"blank name", func(p *model.Profile) { p.Name = "   " }},
		{"bad email", func(p *model.Profile) { p.Email = "not-an-email" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, ps, _ := setupService(t)
			draft := alex()
			tt.apply(&draft)

			_, err := svc.UpdateProfile(context.Background(), draft)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}

			stored, _ := ps.Get()
			if stored.Name != "Alex Johnson" {
				t.Errorf("profile changed on failed update: %q", stored.Name)
			}
		})
	}
}

func TestUpdateProfileEmptyEmail(t *testing.T) {
	svc, _, _ := setupService(t)
	draft := alex()
	draft.Email = ""

	if _, err := svc.UpdateProfile(context.Background(), draft); err != nil {
		t.Errorf("empty email should be allowed: %v", err)
	}
}

func TestAchievementProgress(t *testing.T) {
	achievements := []model.Achievement{
		{ID: "1", Earned: true},
		{ID: "2", Earned: true},
		{ID: "3", Earned: false},
		{ID: "4", Earned: true},
		{ID: "5", Earned: false},
	}

	got := AchievementProgress(achievements)
	if got.Earned != 3 || got.Total != 5 || got.Percent != 60 {
		t.Errorf("progress = %+v, want 3/5 60%%", got)
	}

	got = AchievementProgress(nil)
	if got.Percent != 0 || got.Total != 0 {
		t.Errorf("empty progress = %+v, want zero", got)
	}
}

func TestShareMessage(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	share, err := svc.ShareMessage(ctx)
	if err != nil {
		t.Fatalf("share: %v", err)
	}
	if share.Title != "Join me on Streek!" {
		t.Errorf("title = %q", share.Title)
	}

	svc.ToggleSetting(ctx, "socialSharing")
	_, err = svc.ShareMessage(ctx)
	if !errors.Is(err, ErrSharingDisabled) {
		t.Errorf("err = %v, want ErrSharingDisabled", err)
	}
}

func TestGetMissingProfile(t *testing.T) {
	db, err := database.Open(database.MemoryPath)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	defer db.Close()

	svc := NewService(store.NewProfileStore(db), store.NewAchievementStore(db), theme.NewStore(false), slog.Default())
	defer svc.Close()

	_, err = svc.Get(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
