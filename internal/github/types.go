package github

import (
	"encoding/json"
	"time"
)

// The structs below mirror the slices of the GitHub REST payloads we consume.
// GitHub returns much larger objects — we only unmarshal the fields we need.
//
// Nullable string fields (bio, company, description, language, ...) are plain
// strings: encoding/json leaves the zero value in place for JSON null, which
// is exactly the defaulting the profile schema wants (empty string, never
// null). The one field where null is semantically distinct is Repository.
// Language — GitHub never reports an empty language name, so "" always means
// "no language detected" and the aggregator excludes it from the histogram.

// User is the GET /user response.
// https://docs.github.com/en/rest/users/users#get-the-authenticated-user
type User struct {
	Login       string `json:"login"`
	HTMLURL     string `json:"html_url"`
	Bio         string `json:"bio"`
	Location    string `json:"location"`
	Company     string `json:"company"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
	PublicRepos int    `json:"public_repos"`
}

// Repository is one element of the GET /user/repos response.
type Repository struct {
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	Description     string    `json:"description"`
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
	Language        string    `json:"language"` // "" when GitHub reports null
	HTMLURL         string    `json:"html_url"`
	UpdatedAt       time.Time `json:"updated_at"`
	Topics          []string  `json:"topics"`
	Private         bool      `json:"private"`
	Fork            bool      `json:"fork"`
	Archived        bool      `json:"archived"`
	HasPages        bool      `json:"has_pages"`
	CreatedAt       time.Time `json:"created_at"`
	Size            int       `json:"size"`
	DefaultBranch   string    `json:"default_branch"`
	OpenIssuesCount int       `json:"open_issues_count"`
}

// Event is one element of the GET /users/{login}/events response.
// The API returns events newest-first; we preserve that order.
type Event struct {
	Type      string          `json:"type"`
	Repo      EventRepo       `json:"repo"`
	CreatedAt time.Time       `json:"created_at"`
	Payload   json.RawMessage `json:"payload"`
}

// EventRepo identifies the repository an event happened in.
type EventRepo struct {
	Name string `json:"name"` // full name, e.g. "sakif/devhub"
}
