package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/devhub/internal/apperror"
	"github.com/sakif/devhub/internal/model"
)

func TestUserUpsert_CreatesThenUpdates(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	u := &model.User{
		GitHubID:    12345,
		Login:       "dev1",
		Email:       "dev1@example.com",
		AvatarURL:   "https://avatars.example/dev1",
		AccessToken: "gho_first",
	}

	created, err := db.Upsert(ctx, u)
	require.NoError(t, err)
	assert.True(t, created)
	require.NotEmpty(t, u.ID)
	firstID := u.ID

	// Second login: same GitHub identity, rotated token, changed email.
	u2 := &model.User{
		GitHubID:    12345,
		Login:       "dev1",
		Email:       "new@example.com",
		AccessToken: "gho_second",
	}
	created, err = db.Upsert(ctx, u2)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, firstID, u2.ID, "internal ID is stable across logins")

	got, err := db.GetByID(ctx, firstID)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", got.Email)
	assert.Equal(t, "gho_second", got.AccessToken)
	assert.Equal(t, int64(12345), got.GitHubID)
}

func TestUserUpsert_DistinctGitHubIDs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	a := &model.User{GitHubID: 1, Login: "a"}
	b := &model.User{GitHubID: 2, Login: "b"}

	createdA, err := db.Upsert(ctx, a)
	require.NoError(t, err)
	createdB, err := db.Upsert(ctx, b)
	require.NoError(t, err)

	assert.True(t, createdA)
	assert.True(t, createdB)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestUserGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByID(context.Background(), "nobody")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}
