// Package model defines the data structures used throughout the application.
package model

import (
	"encoding/json"
	"time"
)

// RepositorySummary is the per-repository snapshot stored on a Profile.
// Field names mirror what the directory UI renders; values come straight from
// the GitHub repository payload at sync time.
type RepositorySummary struct {
	Name          string    `json:"name"`
	FullName      string    `json:"fullName"`
	Description   string    `json:"description"`
	Stars         int       `json:"stars"`
	Forks         int       `json:"forks"`
	Language      string    `json:"language"`
	URL           string    `json:"url"`
	UpdatedAt     time.Time `json:"updatedAt"`
	Topics        []string  `json:"topics"`
	IsPrivate     bool      `json:"isPrivate"`
	IsFork        bool      `json:"isFork"`
	Archived      bool      `json:"archived"`
	HasPages      bool      `json:"hasPages"`
	CreatedAt     time.Time `json:"createdAt"`
	Size          int       `json:"size"`
	DefaultBranch string    `json:"defaultBranch"`
	OpenIssues    int       `json:"openIssues"`
}

// EventSummary is one entry of a Profile's recent-activity feed.
// Payload is kept as raw JSON — event payloads differ wildly by type and the
// UI only picks a couple of fields out of them.
type EventSummary struct {
	Type      string          `json:"type"`
	Repo      string          `json:"repo"`
	CreatedAt time.Time       `json:"createdAt"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Stats is the derived statistics bundle, fully replaced on each sync.
type Stats struct {
	TotalStars     int            `json:"totalStars"`
	Languages      map[string]int `json:"languages"`      // language → repo count
	RecentActivity []EventSummary `json:"recentActivity"` // ≤10, newest first
}

// Profile is the denormalized per-user document: exactly one per UserID.
//
// Three writers touch it, each owning a disjoint field set:
//   - the sync pipeline owns the GitHub-derived fields,
//   - the profile edit endpoint owns Bio/Location/Company,
//   - the follow mutator owns Followers/Following.
//
// Every write is column-scoped so the three paths never clobber each other.
type Profile struct {
	UserID string `json:"userId"`

	// Editable fields. Seeded from GitHub when the profile is first created,
	// user-owned afterwards.
	Bio      string `json:"bio"`
	Location string `json:"location"`
	Company  string `json:"company"`

	// GitHub-derived fields, replaced wholesale on each successful sync.
	GithubUsername  string              `json:"githubUsername"`
	GithubURL       string              `json:"githubUrl"`
	GithubFollowers int                 `json:"githubFollowers"`
	GithubFollowing int                 `json:"githubFollowing"`
	GithubRepos     int                 `json:"githubRepos"`
	TopRepositories []RepositorySummary `json:"topRepositories"` // ≤4, by stars desc
	AllRepositories []RepositorySummary `json:"allRepositories"`
	Stats           Stats               `json:"stats"`

	// Social graph: sets of internal user IDs, mirrored across two profiles
	// per follow edge. Never touched by sync.
	Followers []string `json:"followers"`
	Following []string `json:"following"`

	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	LastGithubSync time.Time `json:"lastGithubSync,omitzero"`
}

// GitHubFields is the sync-owned subset of a Profile, produced by the
// aggregator and written by the upsert. Bio/Location/Company ride along only
// for the insert branch of the upsert (seeding a brand-new profile).
type GitHubFields struct {
	Bio             string
	Location        string
	Company         string
	GithubUsername  string
	GithubURL       string
	GithubFollowers int
	GithubFollowing int
	GithubRepos     int
	TopRepositories []RepositorySummary
	AllRepositories []RepositorySummary
	Stats           Stats
}
