package sync

import (
	"context"
	"fmt"

	"github.com/JohanCodinha/ghsync/internal/model"
)

// Resolver correlates remote and local issues of one project. Matching is
// strictly by remote number; titles are never compared.
type Resolver struct {
	store     Store
	projectID string
}

// NewResolver creates a resolver scoped to projectID.
func NewResolver(store Store, projectID string) *Resolver {
	return &Resolver{store: store, projectID: projectID}
}

// Local returns the local issue correlated with the remote number, or nil
// when there is none. Absence is not an error.
func (r *Resolver) Local(ctx context.Context, remoteNumber int) (*model.Issue, error) {
	issue, err := r.store.FindByRemoteNumber(ctx, r.projectID, remoteNumber)
	if err != nil {
		return nil, fmt.Errorf("resolve remote #%d: %w", remoteNumber, err)
	}
	return issue, nil
}

// NeedsCreation reports whether the local issue has never been pushed or pulled.
func (r *Resolver) NeedsCreation(issue model.Issue) bool {
	return !issue.HasRemote()
}
