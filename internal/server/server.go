package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dukerupert/streek/internal/backup"
	"github.com/dukerupert/streek/internal/catalog"
	"github.com/dukerupert/streek/internal/challenge"
	"github.com/dukerupert/streek/internal/config"
	"github.com/dukerupert/streek/internal/handler"
	"github.com/dukerupert/streek/internal/history"
	"github.com/dukerupert/streek/internal/middleware"
	"github.com/dukerupert/streek/internal/profile"
	"github.com/dukerupert/streek/internal/push"
	"github.com/dukerupert/streek/internal/rewards"
	"github.com/dukerupert/streek/internal/store"
	"github.com/dukerupert/streek/internal/theme"
	ws "github.com/dukerupert/streek/internal/websocket"
)

type Server struct {
	db            *sql.DB
	cfg           config.Config
	hub           *ws.Hub
	theme         *theme.Store
	profiles      *profile.Service
	catalogH      *handler.CatalogHandler
	challengeH    *handler.ChallengeHandler
	historyH      *handler.HistoryHandler
	rewardH       *handler.RewardHandler
	profileH      *handler.ProfileHandler
	themeH        *handler.ThemeHandler
	pushH         *handler.PushHandler
	backupH       *handler.BackupHandler
	backups       *backup.Manager
	rateLimiter   *middleware.RateLimiter
	pushScheduler *push.Scheduler
	notifier      *push.Notifier
	unsubscribe   []func()
	logger        *slog.Logger
}

// New wires every component over db. The demo session is loaded first when
// cfg.Seed is set and the database is empty.
func New(db *sql.DB, cfg config.Config, logger *slog.Logger) (*Server, error) {
	if cfg.Seed {
		if err := store.SeedDefaults(db, time.Now()); err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	cat := catalog.NewStatic()
	challengeStore := store.NewChallengeStore(db)
	activityStore := store.NewActivityStore(db)
	rewardStore := store.NewRewardStore(db)
	profileStore := store.NewProfileStore(db)
	achievementStore := store.NewAchievementStore(db)
	pushStore := store.NewPushStore(db)

	hub := ws.NewHub(logger)

	var dark bool
	if p, err := profileStore.Get(); err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	} else if p != nil {
		dark = p.Settings.DarkMode
	}
	th := theme.NewStore(dark)
	unsubTheme := th.Subscribe(func(st theme.State) {
		hub.Notify("theme", "updated", "", map[string]any{"is_dark_mode": st.IsDarkMode})
	})
	profileSvc := profile.NewService(profileStore, achievementStore, th, logger.With("component", "profile"))

	// Push is optional; without VAPID keys milestones only reach the live feed
	var sender push.Sender
	var publicKey string
	if cfg.PushEnabled() {
		sender = push.NewService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.PushSubscriber)
		publicKey = cfg.VAPIDPublicKey
	}
	notifier := push.NewNotifier(sender, pushStore, profileStore, hub, logger)
	var scheduler *push.Scheduler
	if sender != nil && cfg.ReminderHour >= 0 {
		scheduler = push.NewScheduler(notifier, challengeStore, cfg.ReminderHour, logger)
	}

	opts := []challenge.Option{
		challenge.WithOncePerDay(cfg.OncePerDay),
		challenge.WithNotifier(notifier),
	}
	if cfg.SyncHistory {
		opts = append(opts, challenge.WithListener(history.NewRecorder(activityStore, cat)))
	}
	tracker := challenge.NewTracker(challengeStore, logger.With("component", "challenge"), opts...)

	backups := backup.NewManager(BackupConfig(cfg), db, store.NewBackupStore(db), logger, func(st backup.Status) {
		hub.Notify("backup", string(st.State), "", nil)
	})

	ledger := rewards.NewLedger(rewardStore, logger.With("component", "rewards"))
	points := rewards.NewPointsProvider(cfg.PointsSource, cat, activityStore)

	return &Server{
		db:            db,
		cfg:           cfg,
		hub:           hub,
		theme:         th,
		profiles:      profileSvc,
		catalogH:      handler.NewCatalogHandler(cat),
		challengeH:    handler.NewChallengeHandler(tracker, hub, logger.With("component", "challenge_handler")),
		historyH:      handler.NewHistoryHandler(activityStore, cat, hub, logger.With("component", "history_handler")),
		rewardH:       handler.NewRewardHandler(ledger, points, cat, hub, logger.With("component", "reward_handler")),
		profileH:      handler.NewProfileHandler(profileSvc, hub, logger.With("component", "profile_handler")),
		themeH:        handler.NewThemeHandler(th),
		pushH:         handler.NewPushHandler(pushStore, publicKey, notifier, logger.With("component", "push_handler")),
		backupH:       handler.NewBackupHandler(backups, logger.With("component", "backup_handler")),
		backups:       backups,
		rateLimiter:   middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst),
		pushScheduler: scheduler,
		notifier:      notifier,
		unsubscribe:   []func(){unsubTheme},
		logger:        logger,
	}, nil
}

// Start runs background work until ctx is cancelled or Close is called.
func (s *Server) Start(ctx context.Context) {
	if s.pushScheduler != nil {
		s.pushScheduler.Start(ctx)
	}
	s.backups.Start(ctx)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.rateLimiter.Cleanup(3 * time.Minute)
			}
		}
	}()
}

// Close stops background work and detaches theme subscribers.
func (s *Server) Close() {
	if s.pushScheduler != nil {
		s.pushScheduler.Stop()
	}
	s.backups.Stop()
	s.notifier.Wait()
	for _, fn := range s.unsubscribe {
		fn()
	}
	s.profiles.Close()
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(s.logger.With("component", "http")))
	r.Use(middleware.Metrics)

	r.Get("/health", s.healthHandler)
	r.With(middleware.BasicAuth("Metrics", s.cfg.MetricsUser, s.cfg.MetricsPassword)).
		Handle("/metrics", promhttp.Handler())
	r.Get("/ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket"), s.themeGreeting))

	r.Route("/api", func(r chi.Router) {
		if s.cfg.RateLimit > 0 {
			r.Use(middleware.RateLimit(s.rateLimiter, middleware.RealIP))
		}

		r.Get("/catalog", s.catalogH.Get)

		r.Route("/challenges", func(r chi.Router) {
			r.Get("/", s.challengeH.List)
			r.Post("/", s.challengeH.Create)
			r.Get("/today", s.challengeH.Today)
			r.Post("/{id}/complete", s.challengeH.Complete)
		})

		r.Get("/history", s.historyH.List)
		r.Post("/history", s.historyH.Create)

		r.Get("/rewards", s.rewardH.List)
		r.Post("/rewards/{id}/claim", s.rewardH.Claim)
		r.Get("/points", s.rewardH.Points)

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", s.profileH.Get)
			r.Put("/", s.profileH.Update)
			r.Post("/settings/{name}/toggle", s.profileH.ToggleSetting)
			r.Get("/share", s.profileH.Share)
		})
		r.Get("/achievements", s.profileH.Achievements)

		r.Get("/theme", s.themeH.Get)
		r.Post("/theme/toggle", s.themeH.Toggle)

		r.Route("/push", func(r chi.Router) {
			r.Get("/vapid-key", s.pushH.GetVAPIDKey)
			r.Post("/subscribe", s.pushH.Subscribe)
			r.Get("/subscriptions", s.pushH.ListSubscriptions)
			r.Delete("/subscriptions/{id}", s.pushH.Unsubscribe)
			r.Post("/test", s.pushH.TestNotification)
		})

		r.Route("/backups", func(r chi.Router) {
			r.Get("/", s.backupH.List)
			r.Post("/", s.backupH.Run)
			r.Get("/status", s.backupH.Status)
		})
	})

	return r
}

// BackupConfig maps the backup settings onto the backup manager's config.
func BackupConfig(cfg config.Config) backup.Config {
	b := cfg.Backup
	return backup.Config{
		Endpoint:      b.Endpoint,
		Bucket:        b.Bucket,
		Region:        b.Region,
		AccessKey:     b.AccessKey,
		SecretKey:     b.SecretKey,
		Prefix:        b.Prefix,
		Passphrase:    b.Passphrase,
		Interval:      b.Interval,
		RetentionDays: b.RetentionDays,
	}
}

func (s *Server) themeGreeting() ws.Message {
	return ws.NewMessage("theme", "state", "", map[string]any{"is_dark_mode": s.theme.IsDarkMode()})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check", "error", err)
		status, code = "unavailable", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"status":%q}`, status)
}
