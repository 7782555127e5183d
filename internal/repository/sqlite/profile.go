package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/sakif/devhub/internal/apperror"
	"github.com/sakif/devhub/internal/model"
	"github.com/sakif/devhub/internal/repository"
)

// compile-time check that *DB implements repository.ProfileRepository
var _ repository.ProfileRepository = (*DB)(nil)

// UpsertGitHubFields writes a sync snapshot.
//
// This is the Mongo upsert-with-$set idiom rendered in SQL: the ON CONFLICT
// branch names exactly the sync-owned columns, so a concurrent profile edit
// or follow toggle can never be clobbered by a sync landing at the same
// time. Editable fields (bio/location/company) appear only in the INSERT
// column list — they seed a brand-new profile from GitHub and are
// user-owned from then on.
func (db *DB) UpsertGitHubFields(ctx context.Context, userID string, fields *model.GitHubFields) error {
	topJSON, err := marshalColumn(fields.TopRepositories)
	if err != nil {
		return fmt.Errorf("sqlite: encoding top repositories for %s: %w", userID, err)
	}
	allJSON, err := marshalColumn(fields.AllRepositories)
	if err != nil {
		return fmt.Errorf("sqlite: encoding repositories for %s: %w", userID, err)
	}
	statsJSON, err := marshalColumn(fields.Stats)
	if err != nil {
		return fmt.Errorf("sqlite: encoding stats for %s: %w", userID, err)
	}

	now := time.Now()
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO profiles (
			user_id, bio, location, company,
			github_username, github_url,
			github_followers, github_following, github_repos,
			top_repositories, all_repositories, stats,
			created_at, updated_at, last_github_sync
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			github_username  = excluded.github_username,
			github_url       = excluded.github_url,
			github_followers = excluded.github_followers,
			github_following = excluded.github_following,
			github_repos     = excluded.github_repos,
			top_repositories = excluded.top_repositories,
			all_repositories = excluded.all_repositories,
			stats            = excluded.stats,
			updated_at       = excluded.updated_at,
			last_github_sync = excluded.last_github_sync`,
		userID, fields.Bio, fields.Location, fields.Company,
		fields.GithubUsername, fields.GithubURL,
		fields.GithubFollowers, fields.GithubFollowing, fields.GithubRepos,
		topJSON, allJSON, statsJSON,
		now, now, now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting github fields for %s: %w", userID, err)
	}
	return nil
}

// EnsureMinimal writes the degraded fallback record: identity fields only,
// everything else at column defaults (empty collections). DO NOTHING makes
// it a no-op when any profile already exists, which is exactly the recovery
// contract — never replace real data with a fallback.
func (db *DB) EnsureMinimal(ctx context.Context, userID, login string) error {
	now := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO profiles (user_id, github_username, github_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO NOTHING`,
		userID, login, "https://github.com/"+login, now, now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: ensuring minimal profile for %s: %w", userID, err)
	}
	return nil
}

// UpdateEditable replaces only the user-owned text fields.
// Upsert rather than update: the original system lets a profile edit create
// the document if a sync never managed to (degraded accounts still get to
// fill in their bio).
func (db *DB) UpdateEditable(ctx context.Context, userID, bio, location, company string) error {
	now := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO profiles (user_id, bio, location, company, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			bio        = excluded.bio,
			location   = excluded.location,
			company    = excluded.company,
			updated_at = excluded.updated_at`,
		userID, bio, location, company, now, now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating editable fields for %s: %w", userID, err)
	}
	return nil
}

// UpdateFollowEdge sets (follow=true) or clears (follow=false) the directed
// edge actorID→targetID.
//
// Two rows change — actor.following and target.followers — each via a
// single-column write. SQLite gives us a transaction across both, so the
// mirrored-set invariant cannot be observed broken here. Stores without
// cross-document transactions would instead accept a transient window
// between the two writes, self-healing on the next toggle.
//
// Set semantics (no duplicates, removal of absent members is a no-op) make
// the operation idempotent per side, so concurrent toggles of the same pair
// settle on a consistent state.
func (db *DB) UpdateFollowEdge(ctx context.Context, actorID, targetID string, follow bool) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning follow transaction: %w", err)
	}
	defer tx.Rollback()

	actorFollowing, err := readSet(ctx, tx, "following", actorID)
	if err != nil {
		return err
	}
	targetFollowers, err := readSet(ctx, tx, "followers", targetID)
	if err != nil {
		return err
	}

	if follow {
		actorFollowing = addToSet(actorFollowing, targetID)
		targetFollowers = addToSet(targetFollowers, actorID)
	} else {
		actorFollowing = removeFromSet(actorFollowing, targetID)
		targetFollowers = removeFromSet(targetFollowers, actorID)
	}

	now := time.Now()
	if err := writeSet(ctx, tx, "following", actorID, actorFollowing, now); err != nil {
		return err
	}
	if err := writeSet(ctx, tx, "followers", targetID, targetFollowers, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing follow edge %s→%s: %w", actorID, targetID, err)
	}
	return nil
}

// GetByUserID returns the full profile document.
func (db *DB) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	var (
		p                            model.Profile
		topJSON, allJSON, statsJSON  string
		followersJSON, followingJSON string
		lastSync                     sql.NullTime
	)

	err := db.conn.QueryRowContext(ctx, `
		SELECT user_id, bio, location, company,
		       github_username, github_url,
		       github_followers, github_following, github_repos,
		       top_repositories, all_repositories, stats,
		       followers, following,
		       created_at, updated_at, last_github_sync
		FROM profiles WHERE user_id = ?`, userID,
	).Scan(
		&p.UserID, &p.Bio, &p.Location, &p.Company,
		&p.GithubUsername, &p.GithubURL,
		&p.GithubFollowers, &p.GithubFollowing, &p.GithubRepos,
		&topJSON, &allJSON, &statsJSON,
		&followersJSON, &followingJSON,
		&p.CreatedAt, &p.UpdatedAt, &lastSync,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("profile", userID)
		}
		return nil, fmt.Errorf("sqlite: getting profile %s: %w", userID, err)
	}

	for _, col := range []struct {
		raw string
		dst any
	}{
		{topJSON, &p.TopRepositories},
		{allJSON, &p.AllRepositories},
		{statsJSON, &p.Stats},
		{followersJSON, &p.Followers},
		{followingJSON, &p.Following},
	} {
		if err := json.Unmarshal([]byte(col.raw), col.dst); err != nil {
			return nil, fmt.Errorf("sqlite: decoding profile %s: %w", userID, err)
		}
	}
	if lastSync.Valid {
		p.LastGithubSync = lastSync.Time
	}
	normalizeProfile(&p)

	return &p, nil
}

// Directory returns the listing projection: identity, editable fields,
// GitHub counters and follow sets — no repository snapshots or stats, which
// can run to hundreds of KB per row. Sorted most recently updated first.
func (db *DB) Directory(ctx context.Context) ([]model.Profile, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT user_id, bio, location, company,
		       github_username, github_url,
		       github_followers, github_following, github_repos,
		       followers, following,
		       created_at, updated_at
		FROM profiles
		ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing profiles: %w", err)
	}
	defer rows.Close()

	profiles := []model.Profile{}
	for rows.Next() {
		var (
			p                            model.Profile
			followersJSON, followingJSON string
		)
		if err := rows.Scan(
			&p.UserID, &p.Bio, &p.Location, &p.Company,
			&p.GithubUsername, &p.GithubURL,
			&p.GithubFollowers, &p.GithubFollowing, &p.GithubRepos,
			&followersJSON, &followingJSON,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning profile row: %w", err)
		}
		if err := json.Unmarshal([]byte(followersJSON), &p.Followers); err != nil {
			return nil, fmt.Errorf("sqlite: decoding profile %s: %w", p.UserID, err)
		}
		if err := json.Unmarshal([]byte(followingJSON), &p.Following); err != nil {
			return nil, fmt.Errorf("sqlite: decoding profile %s: %w", p.UserID, err)
		}
		normalizeProfile(&p)
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating profiles: %w", err)
	}

	return profiles, nil
}

// --- helpers ---

func readSet(ctx context.Context, tx *sql.Tx, column, userID string) ([]string, error) {
	var raw string
	// column is one of two compile-time constants, never user input.
	err := tx.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM profiles WHERE user_id = ?`, column), userID,
	).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("profile", userID)
		}
		return nil, fmt.Errorf("sqlite: reading %s for %s: %w", column, userID, err)
	}

	var set []string
	if err := json.Unmarshal([]byte(raw), &set); err != nil {
		return nil, fmt.Errorf("sqlite: decoding %s for %s: %w", column, userID, err)
	}
	return set, nil
}

func writeSet(ctx context.Context, tx *sql.Tx, column, userID string, set []string, now time.Time) error {
	raw, err := marshalColumn(set)
	if err != nil {
		return fmt.Errorf("sqlite: encoding %s for %s: %w", column, userID, err)
	}
	_, err = tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE profiles SET %s = ?, updated_at = ? WHERE user_id = ?`, column),
		raw, now, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: writing %s for %s: %w", column, userID, err)
	}
	return nil
}

// addToSet appends v only if absent ($addToSet).
func addToSet(set []string, v string) []string {
	if slices.Contains(set, v) {
		return set
	}
	return append(set, v)
}

// removeFromSet deletes every occurrence of v ($pull).
func removeFromSet(set []string, v string) []string {
	return slices.DeleteFunc(set, func(s string) bool { return s == v })
}

func marshalColumn(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	// JSON null (nil slices) would round-trip as "null"; the schema wants
	// empty collections instead.
	if string(raw) == "null" {
		return "[]", nil
	}
	return string(raw), nil
}

// normalizeProfile replaces nil collections with empty ones so the JSON API
// never serves null where the schema promises an array or object.
func normalizeProfile(p *model.Profile) {
	if p.TopRepositories == nil {
		p.TopRepositories = []model.RepositorySummary{}
	}
	if p.AllRepositories == nil {
		p.AllRepositories = []model.RepositorySummary{}
	}
	if p.Followers == nil {
		p.Followers = []string{}
	}
	if p.Following == nil {
		p.Following = []string{}
	}
	if p.Stats.Languages == nil {
		p.Stats.Languages = map[string]int{}
	}
	if p.Stats.RecentActivity == nil {
		p.Stats.RecentActivity = []model.EventSummary{}
	}
}
