package github

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_StarsAndLanguages(t *testing.T) {
	user := &User{Login: "dev1", HTMLURL: "https://github.com/dev1"}
	repos := []Repository{
		{Name: "a", StargazersCount: 10, Language: "Go"},
		{Name: "b", StargazersCount: 15, Language: "Go"},
		{Name: "c", StargazersCount: 5, Language: ""}, // null language in the API
	}

	fields := Aggregate(user, repos, nil)

	assert.Equal(t, 30, fields.Stats.TotalStars)
	assert.Equal(t, map[string]int{"Go": 2}, fields.Stats.Languages)
	assert.NotContains(t, fields.Stats.Languages, "")
}

func TestAggregate_TopRepositoriesByStars(t *testing.T) {
	user := &User{Login: "dev1"}
	repos := []Repository{
		{Name: "small", StargazersCount: 1},
		{Name: "big", StargazersCount: 100},
		{Name: "mid", StargazersCount: 50},
	}

	fields := Aggregate(user, repos, nil)

	require.Len(t, fields.TopRepositories, 3)
	assert.Equal(t, "big", fields.TopRepositories[0].Name)
	assert.Equal(t, "mid", fields.TopRepositories[1].Name)
	assert.Equal(t, "small", fields.TopRepositories[2].Name)

	// AllRepositories keeps the API order.
	assert.Equal(t, "small", fields.AllRepositories[0].Name)
}

func TestAggregate_TopRepositoriesTruncatedToFour(t *testing.T) {
	user := &User{Login: "dev1"}
	repos := make([]Repository, 7)
	for i := range repos {
		repos[i] = Repository{Name: string(rune('a' + i)), StargazersCount: i}
	}

	fields := Aggregate(user, repos, nil)

	require.Len(t, fields.TopRepositories, TopRepoCount)
	assert.Equal(t, "g", fields.TopRepositories[0].Name) // 6 stars
	assert.Len(t, fields.AllRepositories, 7)
}

func TestAggregate_TopRepositoriesStableOnTies(t *testing.T) {
	user := &User{Login: "dev1"}
	// Equal star counts: input (recently-updated) order must survive.
	repos := []Repository{
		{Name: "first", StargazersCount: 3},
		{Name: "second", StargazersCount: 3},
		{Name: "third", StargazersCount: 3},
	}

	fields := Aggregate(user, repos, nil)

	require.Len(t, fields.TopRepositories, 3)
	assert.Equal(t, "first", fields.TopRepositories[0].Name)
	assert.Equal(t, "second", fields.TopRepositories[1].Name)
	assert.Equal(t, "third", fields.TopRepositories[2].Name)
}

func TestAggregate_RecentActivityCapped(t *testing.T) {
	user := &User{Login: "dev1"}
	events := make([]Event, 15)
	for i := range events {
		events[i] = Event{
			Type:      "PushEvent",
			Repo:      EventRepo{Name: "dev1/repo"},
			CreatedAt: time.Date(2024, 1, 15-i, 0, 0, 0, 0, time.UTC),
		}
	}

	fields := Aggregate(user, nil, events)

	require.Len(t, fields.Stats.RecentActivity, RecentActivityCount)
	// Newest-first order from the API is preserved.
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), fields.Stats.RecentActivity[0].CreatedAt)
}

func TestAggregate_EmptyInputs(t *testing.T) {
	user := &User{
		Login:       "dev1",
		HTMLURL:     "https://github.com/dev1",
		Followers:   2,
		Following:   3,
		PublicRepos: 0,
	}

	fields := Aggregate(user, nil, nil)

	assert.Equal(t, "dev1", fields.GithubUsername)
	assert.Equal(t, 2, fields.GithubFollowers)
	assert.Equal(t, 0, fields.Stats.TotalStars)
	assert.Empty(t, fields.Stats.Languages)
	assert.NotNil(t, fields.AllRepositories)
	assert.Empty(t, fields.AllRepositories)
	assert.NotNil(t, fields.Stats.RecentActivity)
	assert.Empty(t, fields.Stats.RecentActivity)
}

func TestAggregate_CarriesProfileFields(t *testing.T) {
	user := &User{
		Login:    "dev1",
		Bio:      "systems person",
		Location: "Dhaka",
		Company:  "Acme",
	}

	fields := Aggregate(user, nil, nil)

	assert.Equal(t, "systems person", fields.Bio)
	assert.Equal(t, "Dhaka", fields.Location)
	assert.Equal(t, "Acme", fields.Company)
}

func TestAggregate_NilTopicsBecomeEmptySlice(t *testing.T) {
	user := &User{Login: "dev1"}
	repos := []Repository{{Name: "a"}}

	fields := Aggregate(user, repos, nil)

	require.Len(t, fields.AllRepositories, 1)
	assert.NotNil(t, fields.AllRepositories[0].Topics)
	assert.Empty(t, fields.AllRepositories[0].Topics)
}
