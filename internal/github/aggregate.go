package github

import (
	"sort"

	"github.com/sakif/devhub/internal/model"
)

const (
	// TopRepoCount is how many repositories the overview card shows.
	TopRepoCount = 4
	// RecentActivityCount caps the stored activity feed.
	RecentActivityCount = 10
)

// Aggregate transforms the three raw API payloads into the sync-owned field
// set of a Profile. It is pure and deterministic: no I/O, no clock, no
// mutation of its inputs.
//
// repos and events may be nil — a failed secondary fetch degrades to empty
// collections, never to an error. user must be non-nil; without the primary
// profile there is nothing to aggregate (the orchestrator enforces this).
func Aggregate(user *User, repos []Repository, events []Event) *model.GitHubFields {
	all := make([]model.RepositorySummary, 0, len(repos))
	languages := make(map[string]int)
	totalStars := 0

	for _, r := range repos {
		totalStars += r.StargazersCount
		if r.Language != "" {
			// Repos with no detected language are excluded from the
			// histogram entirely, not lumped under a placeholder key.
			languages[r.Language]++
		}

		topics := r.Topics
		if topics == nil {
			topics = []string{}
		}
		all = append(all, model.RepositorySummary{
			Name:          r.Name,
			FullName:      r.FullName,
			Description:   r.Description,
			Stars:         r.StargazersCount,
			Forks:         r.ForksCount,
			Language:      r.Language,
			URL:           r.HTMLURL,
			UpdatedAt:     r.UpdatedAt,
			Topics:        topics,
			IsPrivate:     r.Private,
			IsFork:        r.Fork,
			Archived:      r.Archived,
			HasPages:      r.HasPages,
			CreatedAt:     r.CreatedAt,
			Size:          r.Size,
			DefaultBranch: r.DefaultBranch,
			OpenIssues:    r.OpenIssuesCount,
		})
	}

	// Stable sort keeps the API's recently-updated order for equal star
	// counts, so the top list is deterministic for any input.
	top := make([]model.RepositorySummary, len(all))
	copy(top, all)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Stars > top[j].Stars
	})
	if len(top) > TopRepoCount {
		top = top[:TopRepoCount]
	}

	recent := make([]model.EventSummary, 0, RecentActivityCount)
	for _, e := range events {
		if len(recent) == RecentActivityCount {
			break
		}
		recent = append(recent, model.EventSummary{
			Type:      e.Type,
			Repo:      e.Repo.Name,
			CreatedAt: e.CreatedAt,
			Payload:   e.Payload,
		})
	}

	return &model.GitHubFields{
		Bio:             user.Bio,
		Location:        user.Location,
		Company:         user.Company,
		GithubUsername:  user.Login,
		GithubURL:       user.HTMLURL,
		GithubFollowers: user.Followers,
		GithubFollowing: user.Following,
		GithubRepos:     user.PublicRepos,
		TopRepositories: top,
		AllRepositories: all,
		Stats: model.Stats{
			TotalStars:     totalStars,
			Languages:      languages,
			RecentActivity: recent,
		},
	}
}
