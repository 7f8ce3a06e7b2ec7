package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JohanCodinha/ghsync/internal/logger"
	"github.com/JohanCodinha/ghsync/internal/model"
)

var (
	// ErrRepositoryNotConfigured means the project has no repository binding.
	ErrRepositoryNotConfigured = errors.New("no repository configured for project")
	// ErrRepositoryDisabled means the binding exists but sync is switched off.
	ErrRepositoryDisabled = errors.New("repository sync is disabled for project")
)

// BindingStore reads and stamps the project's repository binding.
type BindingStore interface {
	GetRepository(ctx context.Context, projectID string) (*model.Repository, error)
	TouchRepositorySync(ctx context.Context, projectID string, at time.Time) error
}

// TrackerFactory builds the tracker for a binding.
type TrackerFactory func(repo model.Repository) (Tracker, error)

// Runner resolves a project's binding and runs an Engine against it.
type Runner struct {
	store      Store
	bindings   BindingStore
	newTracker TrackerFactory
	now        func() time.Time
}

// NewRunner creates a runner. store and bindings are usually the same *store.DB.
func NewRunner(store Store, bindings BindingStore, newTracker TrackerFactory) *Runner {
	return &Runner{
		store:      store,
		bindings:   bindings,
		newTracker: newTracker,
		now:        time.Now,
	}
}

// Sync runs one sync for projectID. A missing or inactive binding is a fatal
// error and nothing is processed.
func (r *Runner) Sync(ctx context.Context, projectID string, opts Options) (*Result, error) {
	repo, err := r.bindings.GetRepository(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load repository binding: %w", err)
	}
	if repo == nil {
		return nil, fmt.Errorf("%w %s", ErrRepositoryNotConfigured, projectID)
	}
	if !repo.Active {
		return nil, fmt.Errorf("%w %s", ErrRepositoryDisabled, projectID)
	}

	tracker, err := r.newTracker(*repo)
	if err != nil {
		return nil, fmt.Errorf("failed to create client for %s: %w", repo.FullName, err)
	}

	logger.Info("sync: %s %s <-> %s (dry run: %v)", opts.Direction, projectID, repo.FullName, opts.DryRun)

	engine := New(r.store, tracker, projectID)
	engine.now = r.now
	result, err := engine.Run(ctx, opts)
	if err != nil {
		return nil, err
	}

	if result.Success && !opts.DryRun {
		if err := r.bindings.TouchRepositorySync(ctx, projectID, r.now()); err != nil {
			logger.Warn("sync: failed to stamp last sync of %s: %v", projectID, err)
		}
	}
	return result, nil
}
