package model

import "time"

// User represents a registered user account.
//
// We use GitHub OAuth as the identity provider, so the primary external
// identifier is the GitHub user ID (an integer). We still generate our own
// internal string ID (xid) so our primary keys aren't tied to a third
// party's numbering scheme.
//
// AccessToken is the OAuth access token from the most recent login. The sync
// pipeline needs it for on-demand resyncs, so we persist it alongside the
// account; it is never serialized into API responses.
type User struct {
	ID          string    `json:"id"        db:"id"`
	GitHubID    int64     `json:"githubId"  db:"github_id"` // GitHub's numeric user ID
	Login       string    `json:"login"     db:"login"`     // GitHub username, e.g. "sakif"
	Email       string    `json:"email"     db:"email"`     // Primary public email (may be empty)
	AvatarURL   string    `json:"avatarUrl" db:"avatar_url"`
	AccessToken string    `json:"-"         db:"access_token"` // GitHub OAuth token, server-side only
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}
