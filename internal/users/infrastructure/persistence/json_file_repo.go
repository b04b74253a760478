package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/renameio/v2"

	"github.com/cityreports/miniapp/internal/users/domain"
)

const lockRetryDelay = 25 * time.Millisecond

// JSONFileRepository keeps all user records in a single JSON file.
// Every read loads the whole file; every write rewrites it through a
// temporary file and a rename.
type JSONFileRepository struct {
	path   string
	mu     sync.Mutex
	lock   *flock.Flock
	logger *slog.Logger
}

// NewJSONFileRepository creates a repository backed by the file at path.
func NewJSONFileRepository(path string, logger *slog.Logger) *JSONFileRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &JSONFileRepository{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logger,
	}
}

// Path returns the store file path.
func (r *JSONFileRepository) Path() string {
	return r.path
}

// Exists reports whether the store file is present.
func (r *JSONFileRepository) Exists() bool {
	_, err := os.Stat(r.path)
	return err == nil
}

// Load reads and parses the whole store.
func (r *JSONFileRepository) Load(ctx context.Context) (*domain.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.load()
}

// Get returns the record of a single user.
func (r *JSONFileRepository) Get(ctx context.Context, userID string) (*domain.Record, error) {
	store, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	rec, ok := store.Get(userID)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if !rec.Valid() {
		return nil, domain.ErrRecordInvalid
	}
	return rec, nil
}

// SetField sets field to value on the user's record and persists the store.
// A record is created for unknown users. The store file itself is never
// created here: a missing file yields domain.ErrStoreNotFound.
func (r *JSONFileRepository) SetField(ctx context.Context, userID, field string, value any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.Exists() {
		return domain.ErrStoreNotFound
	}

	locked, err := r.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock user store: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock user store: %s is busy", r.path)
	}
	defer func() {
		if err := r.lock.Unlock(); err != nil {
			r.logger.Warn("failed to release store lock", "path", r.path, "error", err)
		}
	}()

	store, err := r.load()
	if err != nil {
		return err
	}

	if err := store.Ensure(userID).Set(field, value); err != nil {
		return fmt.Errorf("user %q: %w", userID, err)
	}

	data, err := store.MarshalIndent()
	if err != nil {
		return fmt.Errorf("encode user store: %w", err)
	}

	if err := renameio.WriteFile(r.path, data, 0o644, renameio.WithExistingPermissions()); err != nil {
		return fmt.Errorf("write user store: %w", err)
	}

	r.logger.Debug("user store updated",
		"path", r.path,
		"user_id", userID,
		"field", field,
	)
	return nil
}

func (r *JSONFileRepository) load() (*domain.Store, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrStoreNotFound
		}
		return nil, fmt.Errorf("read user store: %w", err)
	}

	store, err := domain.ParseStore(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", r.path, err)
	}
	return store, nil
}
