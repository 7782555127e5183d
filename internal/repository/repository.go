// Package repository defines the storage interfaces consumed by the service
// layer. The sqlite subpackage implements them; tests swap in mocks.
package repository

import (
	"context"

	"github.com/sakif/devhub/internal/model"
)

// DefaultActivityLimit caps the activity feed returned to a user.
const DefaultActivityLimit = 50

// ProfileRepository persists the denormalized per-user Profile documents.
//
// Every mutation is field-scoped: each method names exactly the columns its
// write path owns and never touches the rest. That discipline — not a lock —
// is what lets the sync pipeline, the edit endpoint, and the follow mutator
// write concurrently without clobbering each other.
type ProfileRepository interface {
	// GetByUserID returns the full profile document.
	// Returns apperror.ErrNotFound if no profile exists for userID.
	GetByUserID(ctx context.Context, userID string) (*model.Profile, error)

	// Directory returns the field-filtered listing projection (no repo
	// snapshots or stats), sorted by UpdatedAt descending.
	Directory(ctx context.Context) ([]model.Profile, error)

	// UpsertGitHubFields inserts the profile or replaces its sync-owned
	// fields. On insert, editable fields are seeded from GitHub and the
	// follow sets start empty; on update, only sync-owned columns change.
	UpsertGitHubFields(ctx context.Context, userID string, fields *model.GitHubFields) error

	// EnsureMinimal creates a fallback profile (identity fields only,
	// empty collections) if and only if none exists yet.
	EnsureMinimal(ctx context.Context, userID, login string) error

	// UpdateEditable replaces only bio/location/company.
	UpdateEditable(ctx context.Context, userID, bio, location, company string) error

	// UpdateFollowEdge sets or clears the directed edge actor→target,
	// updating actor.following and target.followers with set semantics.
	// Both single-column writes run inside one transaction.
	UpdateFollowEdge(ctx context.Context, actorID, targetID string, follow bool) error
}

// UserRepository persists identity records from the OAuth layer.
type UserRepository interface {
	// Upsert inserts or updates a user keyed by GitHub ID, refreshing
	// login/email/avatar/access token on every login. Reports whether a
	// new account was created.
	Upsert(ctx context.Context, user *model.User) (created bool, err error)

	// GetByID returns the user for the given internal ID.
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// ActivityRepository persists the per-user login/logout activity log.
type ActivityRepository interface {
	Record(ctx context.Context, entry *model.ActivityEntry) error

	// Recent returns up to limit entries for userID, newest first.
	Recent(ctx context.Context, userID string, limit int) ([]model.ActivityEntry, error)
}
