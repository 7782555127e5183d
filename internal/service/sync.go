// Package service contains the business logic layer: the GitHub sync
// orchestrator, profile editing and the social graph mutator, account
// authentication, and activity logging.
//
// Services accept interfaces (repositories, the GitHub client) and return
// domain errors from internal/apperror; they know nothing about HTTP.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sakif/devhub/internal/apperror"
	"github.com/sakif/devhub/internal/github"
	"github.com/sakif/devhub/internal/model"
	"github.com/sakif/devhub/internal/repository"
)

// DefaultSyncTimeout bounds a caller-initiated sync so the UI is never
// blocked indefinitely on a slow GitHub response.
const DefaultSyncTimeout = 2 * time.Minute

// GitHubClient is the slice of the GitHub API the orchestrator consumes.
// *github.Client satisfies it; tests substitute a fake.
type GitHubClient interface {
	User(ctx context.Context, token string) (*github.User, error)
	Repositories(ctx context.Context, token string) ([]github.Repository, error)
	Events(ctx context.Context, token, login string) ([]github.Event, error)
}

// SyncService brings a profile's GitHub-derived fields up to date from a
// live fetch. Three triggers funnel into it: account creation, login, and
// caller-initiated resync. Every entry point is idempotent — a duplicate or
// retried trigger just rewrites the same snapshot.
type SyncService struct {
	gh       GitHubClient
	profiles repository.ProfileRepository
	users    repository.UserRepository
	logger   *slog.Logger
	timeout  time.Duration
}

// NewSyncService creates a SyncService. timeout bounds manual syncs; pass 0
// for DefaultSyncTimeout.
func NewSyncService(
	gh GitHubClient,
	profiles repository.ProfileRepository,
	users repository.UserRepository,
	logger *slog.Logger,
	timeout time.Duration,
) *SyncService {
	if timeout <= 0 {
		timeout = DefaultSyncTimeout
	}
	return &SyncService{
		gh:       gh,
		profiles: profiles,
		users:    users,
		logger:   logger,
		timeout:  timeout,
	}
}

// SyncProfile fetches the user's live GitHub data, aggregates it, and
// upserts the sync-owned profile fields. Returns the stored profile.
//
// Failure containment is asymmetric on purpose:
//   - The /user fetch is required. Without it there is no identity to write,
//     so any failure aborts with SyncFailed.
//   - The repository and event fetches are best-effort. They run
//     concurrently (independent reads), and a failure on either degrades
//     that slice to an empty collection rather than aborting — a profile
//     with zero repos listed beats no profile update at all.
//
// The client does not retry; a retried SyncProfile call is itself the retry
// mechanism and is safe because the write is a full idempotent snapshot.
func (s *SyncService) SyncProfile(ctx context.Context, userID, accessToken string) (*model.Profile, error) {
	ghUser, err := s.gh.User(ctx, accessToken)
	if err != nil {
		return nil, apperror.SyncFailed(syncFailureMessage(err), err)
	}

	var (
		repos  []github.Repository
		events []github.Event
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.gh.Repositories(gctx, accessToken)
		if err != nil {
			s.logger.Warn("repository fetch failed, continuing with empty list",
				slog.String("userID", userID),
				slog.String("error", err.Error()),
			)
			return nil
		}
		repos = r
		return nil
	})
	g.Go(func() error {
		e, err := s.gh.Events(gctx, accessToken, ghUser.Login)
		if err != nil {
			s.logger.Warn("event fetch failed, continuing with empty list",
				slog.String("userID", userID),
				slog.String("error", err.Error()),
			)
			return nil
		}
		events = e
		return nil
	})
	// The goroutines swallow their own errors, so Wait only synchronizes.
	_ = g.Wait()

	fields := github.Aggregate(ghUser, repos, events)

	if err := s.profiles.UpsertGitHubFields(ctx, userID, fields); err != nil {
		return nil, fmt.Errorf("sync: storing profile %s: %w", userID, err)
	}

	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("sync: reading back profile %s: %w", userID, err)
	}

	s.logger.Info("github profile synced",
		slog.String("userID", userID),
		slog.String("login", ghUser.Login),
		slog.Int("repos", len(fields.AllRepositories)),
		slog.Int("totalStars", fields.Stats.TotalStars),
	)

	return profile, nil
}

// OnUserCreated is the account-creation trigger, invoked by the auth
// callback right after a new user record is written.
//
// The account must end up with exactly one profile document either way:
// a full snapshot on success, or a degraded minimal record (identity fields
// only, empty collections) when the primary GitHub fetch fails. Sync
// failures are not surfaced — a later manual resync repairs them.
func (s *SyncService) OnUserCreated(ctx context.Context, user *model.User) error {
	if _, err := s.SyncProfile(ctx, user.ID, user.AccessToken); err != nil {
		s.logger.Warn("initial sync failed, writing degraded profile",
			slog.String("userID", user.ID),
			slog.String("login", user.Login),
			slog.String("error", err.Error()),
		)
		if err := s.profiles.EnsureMinimal(ctx, user.ID, user.Login); err != nil {
			return fmt.Errorf("sync: writing degraded profile for %s: %w", user.ID, err)
		}
	}
	return nil
}

// OnUserLoggedIn is the login trigger for returning users.
//
// The upsert it runs is column-scoped to sync-owned fields, so the user's
// follow sets and edited bio/location/company survive every login sync
// untouched. On failure the existing record is left entirely intact; a
// minimal record is created only if none exists at all (e.g. the account
// predates profile syncing).
func (s *SyncService) OnUserLoggedIn(ctx context.Context, user *model.User) error {
	if _, err := s.SyncProfile(ctx, user.ID, user.AccessToken); err != nil {
		s.logger.Warn("login sync failed, leaving existing profile untouched",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
		if err := s.profiles.EnsureMinimal(ctx, user.ID, user.Login); err != nil {
			return fmt.Errorf("sync: ensuring profile for %s: %w", user.ID, err)
		}
	}
	return nil
}

// ManualSync is the caller-initiated resync. Unlike the silent login-time
// triggers it reports failures to the caller, since a human asked for it
// and is waiting on the result.
//
// Fails with NoAccessToken when the stored token is absent (e.g. a session
// established without the GitHub provider), and with SyncFailed when the
// primary fetch fails. Bounded by the service's sync timeout.
func (s *SyncService) ManualSync(ctx context.Context, userID string) (*model.Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("sync: loading user %s: %w", userID, err)
	}
	if user.AccessToken == "" {
		return nil, apperror.NoAccessToken()
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.SyncProfile(ctx, userID, user.AccessToken)
}

// syncFailureMessage derives the user-facing cause from a client error,
// without leaking transport internals. GitHub's own error message (already
// sanitized by the client) is included when we have one.
func syncFailureMessage(err error) string {
	var apiErr *github.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode != 0 {
		return fmt.Sprintf("failed to sync with GitHub: %s (status %d)", apiErr.Message, apiErr.StatusCode)
	}
	return "failed to sync with GitHub: could not reach the GitHub API"
}
