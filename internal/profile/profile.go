// Package profile manages the single user profile, its boolean settings and
// the achievements summary. Dark mode is owned by the theme store; the
// profile only mirrors it.
package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dukerupert/streek/internal/history"
	"github.com/dukerupert/streek/internal/model"
	"github.com/dukerupert/streek/internal/store"
	"github.com/dukerupert/streek/internal/theme"
)

// DarkModeSetting is the setting name delegated to the theme store.
const DarkModeSetting = "darkMode"

var (
	ErrNotFound        = errors.New("profile not found")
	ErrValidation      = errors.New("validation failed")
	ErrUnknownSetting  = errors.New("unknown setting")
	ErrSharingDisabled = errors.New("social sharing disabled")
)

type Store interface {
	Get() (*model.Profile, error)
	Replace(p model.Profile) (*model.Profile, error)
	ToggleSetting(name string) error
	SetSetting(name string, value bool) error
}

type AchievementLister interface {
	List() ([]model.Achievement, error)
}

// Progress summarizes earned achievements.
type Progress struct {
	Earned  int `json:"earned"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}

// Share is the payload handed to the client's share sheet.
type Share struct {
	Message string `json:"message"`
	Title   string `json:"title"`
}

type Service struct {
	profiles     Store
	achievements AchievementLister
	theme        *theme.Store
	validate     *validator.Validate
	unsubscribe  func()
	logger       *slog.Logger
}

// NewService wires the profile to the theme store. Every theme change is
// written to the profile's dark mode column before Toggle returns.
func NewService(profiles Store, achievements AchievementLister, th *theme.Store, logger *slog.Logger) *Service {
	s := &Service{
		profiles:     profiles,
		achievements: achievements,
		theme:        th,
		validate:     validator.New(),
		logger:       logger,
	}
	s.unsubscribe = th.Subscribe(s.mirrorTheme)
	return s
}

// Close detaches the service from the theme store.
func (s *Service) Close() {
	s.unsubscribe()
}

func (s *Service) mirrorTheme(st theme.State) {
	if err := s.profiles.SetSetting(DarkModeSetting, st.IsDarkMode); err != nil {
		s.logger.Error("mirror dark mode", "error", err)
	}
}

func (s *Service) Get(ctx context.Context) (*model.Profile, error) {
	p, err := s.profiles.Get()
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	p.Settings.DarkMode = s.theme.IsDarkMode()
	return p, nil
}

// UpdateProfile replaces the whole profile with draft. The draft's dark mode
// is ignored.
func (s *Service) UpdateProfile(ctx context.Context, draft model.Profile) (*model.Profile, error) {
	draft.Name = strings.TrimSpace(draft.Name)
	draft.Email = strings.TrimSpace(draft.Email)
	if draft.ProfileImage != nil && strings.TrimSpace(*draft.ProfileImage) == "" {
		draft.ProfileImage = nil
	}

	if err := s.validate.Struct(draft); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, fmt.Errorf("%w: invalid %s", ErrValidation, strings.ToLower(verrs[0].Field()))
		}
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	// Only used if the row does not exist yet.
	draft.Settings.DarkMode = s.theme.IsDarkMode()
	p, err := s.profiles.Replace(draft)
	if err != nil {
		return nil, err
	}
	s.logger.Info("profile updated", "name", p.Name)
	return p, nil
}

// ToggleSetting flips one boolean setting and returns the updated profile.
func (s *Service) ToggleSetting(ctx context.Context, name string) (*model.Profile, error) {
	if !store.IsSetting(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSetting, name)
	}

	if name == DarkModeSetting {
		s.theme.Toggle()
	} else if err := s.profiles.ToggleSetting(name); err != nil {
		return nil, err
	}

	p, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("setting toggled", "setting", name)
	return p, nil
}

func (s *Service) Achievements(ctx context.Context) ([]model.Achievement, error) {
	return s.achievements.List()
}

// AchievementProgress counts earned achievements. Percent is 0 for an empty list.
func AchievementProgress(achievements []model.Achievement) Progress {
	var earned int
	for _, a := range achievements {
		if a.Earned {
			earned++
		}
	}
	return Progress{
		Earned:  earned,
		Total:   len(achievements),
		Percent: history.Percent(earned, len(achievements)),
	}
}

// ShareMessage returns the invite text, or ErrSharingDisabled when the user
// has turned social sharing off.
func (s *Service) ShareMessage(ctx context.Context) (Share, error) {
	p, err := s.Get(ctx)
	if err != nil {
		return Share{}, err
	}
	if !p.Settings.SocialSharing {
		return Share{}, ErrSharingDisabled
	}
	return Share{
		Message: "Check out Streek, the fitness accountability app that helps me stay on track with my fitness goals! 💪",
		Title:   "Join me on Streek!",
	}, nil
}
