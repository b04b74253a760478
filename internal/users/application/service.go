// Package application holds the user profile and settings use cases.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/cityreports/miniapp/internal/users/domain"
	"github.com/cityreports/miniapp/pkg/observability"
)

// Repository defines storage for user records.
type Repository interface {
	Path() string
	Exists() bool
	Load(ctx context.Context) (*domain.Store, error)
	SetField(ctx context.Context, userID, field string, value any) error
}

// Service serves profile and settings views over a Repository.
type Service struct {
	repo      Repository
	projector *domain.Projector
	logger    *slog.Logger
	metrics   observability.Metrics
}

// ServiceConfig configures a Service.
type ServiceConfig struct {
	Repository Repository
	Projector  *domain.Projector
	Logger     *slog.Logger
	Metrics    observability.Metrics
}

// NewService creates a user service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Projector == nil {
		cfg.Projector = domain.NewProjector(nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NoopMetrics{}
	}
	return &Service{
		repo:      cfg.Repository,
		projector: cfg.Projector,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
	}
}

// GetProfile returns the public profile of a user.
func (s *Service) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	var profile domain.Profile
	err := s.track(ctx, "get_profile", func(ctx context.Context) error {
		store, err := s.repo.Load(ctx)
		if err != nil {
			return err
		}
		rec, ok := store.Get(userID)
		if !ok {
			return domain.ErrUserNotFound
		}
		if !rec.Valid() {
			return fmt.Errorf("user %q: %w", userID, domain.ErrRecordInvalid)
		}
		profile, err = s.projector.Profile(rec)
		return err
	})
	return profile, err
}

// GetSettings returns the notification settings of a user. Unknown users and
// a missing store both yield the defaults; nothing is written.
func (s *Service) GetSettings(ctx context.Context, userID string) (domain.Settings, error) {
	settings := domain.DefaultSettings()
	err := s.track(ctx, "get_settings", func(ctx context.Context) error {
		store, err := s.repo.Load(ctx)
		if errors.Is(err, domain.ErrStoreNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		rec, _ := store.Get(userID)
		if rec != nil && !rec.Valid() {
			return fmt.Errorf("user %q: %w", userID, domain.ErrRecordInvalid)
		}
		settings = s.projector.Settings(rec)
		return nil
	})
	return settings, err
}

// UpdateSetting stores value under setting on the user's record, creating the
// record if needed. Neither the setting name nor the value is validated.
func (s *Service) UpdateSetting(ctx context.Context, userID, setting string, value any) error {
	err := s.track(ctx, "update_setting", func(ctx context.Context) error {
		return s.repo.SetField(ctx, userID, setting, value)
	})
	if err == nil {
		s.metrics.Counter(observability.MetricSettingsUpdates, 1, observability.T("setting", setting))
		s.logger.InfoContext(ctx, "setting updated", "setting", setting)
	}
	return err
}

// StoreInfo is a diagnostic snapshot of the store and its surroundings.
type StoreInfo struct {
	Path         string   `json:"path"`
	AbsolutePath string   `json:"absolute_path,omitempty"`
	Exists       bool     `json:"exists"`
	WorkingDir   string   `json:"working_dir"`
	WorkingFiles []string `json:"working_dir_files"`
	StoreDir     string   `json:"store_dir"`
	StoreFiles   []string `json:"store_dir_files"`
	UserCount    int      `json:"user_count"`
	UserIDs      []string `json:"user_ids"`
	Error        string   `json:"error,omitempty"`
}

// Describe reports where the store lives and what it holds. Failures are
// folded into the result rather than returned.
func (s *Service) Describe(ctx context.Context) StoreInfo {
	path := s.repo.Path()
	info := StoreInfo{
		Path:     path,
		Exists:   s.repo.Exists(),
		StoreDir: filepath.Dir(path),
		UserIDs:  []string{},
	}
	if abs, err := filepath.Abs(path); err == nil {
		info.AbsolutePath = abs
	}
	if wd, err := os.Getwd(); err == nil {
		info.WorkingDir = wd
		info.WorkingFiles = listDir(wd)
	}
	info.StoreFiles = listDir(info.StoreDir)

	if !info.Exists {
		return info
	}
	store, err := s.repo.Load(ctx)
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.UserCount = store.Len()
	info.UserIDs = store.IDs()
	s.metrics.Gauge(observability.MetricStoreUsers, float64(store.Len()))
	return info
}

func (s *Service) track(ctx context.Context, op string, fn func(context.Context) error) error {
	timer := observability.StartTimer(op).
		WithMetrics(s.metrics).
		WithTags(observability.T("component", "users"))
	err := fn(ctx)
	if isExpected(err) {
		timer.Stop(ctx)
	} else {
		timer.StopWithError(ctx, err)
	}
	return err
}

// isExpected reports errors that describe the request rather than a fault.
func isExpected(err error) bool {
	return err == nil ||
		errors.Is(err, domain.ErrUserNotFound) ||
		errors.Is(err, domain.ErrProfileNotReady) ||
		errors.Is(err, domain.ErrStoreNotFound)
}

func listDir(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return []string{}
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}
