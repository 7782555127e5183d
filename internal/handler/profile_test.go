package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/devhub/internal/auth"
	"github.com/sakif/devhub/internal/github"
	"github.com/sakif/devhub/internal/model"
	"github.com/sakif/devhub/internal/repository/sqlite"
	"github.com/sakif/devhub/internal/service"
)

// fakeGitHub scripts the GitHub API for sync endpoints under test.
type fakeGitHub struct {
	userErr error
}

func (f *fakeGitHub) User(ctx context.Context, token string) (*github.User, error) {
	if f.userErr != nil {
		return nil, f.userErr
	}
	return &github.User{Login: "dev1", HTMLURL: "https://github.com/dev1", PublicRepos: 1}, nil
}

func (f *fakeGitHub) Repositories(ctx context.Context, token string) ([]github.Repository, error) {
	return []github.Repository{{Name: "a", StargazersCount: 5, Language: "Go"}}, nil
}

func (f *fakeGitHub) Events(ctx context.Context, token, login string) ([]github.Event, error) {
	return nil, nil
}

type testEnv struct {
	db     *sqlite.DB
	tokens *auth.TokenService
	router *chi.Mux
}

// newTestEnv wires the API routes the way the server does, against an
// in-memory database and a scripted GitHub client.
func newTestEnv(t *testing.T, gh service.GitHubClient) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	profileService := service.NewProfileService(db, logger)
	syncService := service.NewSyncService(gh, db, db, logger, 0)
	activityService := service.NewActivityService(db, logger)

	h := NewProfileHandler(profileService, syncService, activityService, logger)

	r := chi.NewRouter()
	r.Get("/api/profiles", h.HandleDirectory)
	r.Get("/api/profiles/{userID}", h.HandleGetProfile)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Put("/api/profile", h.HandleUpdateProfile)
		r.Post("/api/profile/sync", h.HandleSync)
		r.Post("/api/profiles/{userID}/follow", h.HandleToggleFollow)
		r.Get("/api/activity", h.HandleActivity)
	})

	return &testEnv{db: db, tokens: tokens, router: r}
}

// do performs a request, optionally authenticated as userID.
func (e *testEnv) do(t *testing.T, method, path, userID string, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		token, err := e.tokens.Generate(userID)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandleDirectory(t *testing.T) {
	env := newTestEnv(t, &fakeGitHub{})
	require.NoError(t, env.db.EnsureMinimal(context.Background(), "u1", "dev1"))

	rec := env.do(t, http.MethodGet, "/api/profiles", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var profiles []model.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profiles))
	require.Len(t, profiles, 1)
	assert.Equal(t, "dev1", profiles[0].GithubUsername)
}

func TestHandleGetProfile_NotFound(t *testing.T) {
	env := newTestEnv(t, &fakeGitHub{})

	rec := env.do(t, http.MethodGet, "/api/profiles/ghost", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Error)
}

func TestHandleUpdateProfile(t *testing.T) {
	env := newTestEnv(t, &fakeGitHub{})
	require.NoError(t, env.db.EnsureMinimal(context.Background(), "u1", "dev1"))

	rec := env.do(t, http.MethodPut, "/api/profile", "u1",
		`{"bio":"hello","location":"Dhaka","company":"Acme"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var p model.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "hello", p.Bio)
	assert.Equal(t, "Dhaka", p.Location)
}

func TestHandleUpdateProfile_Unauthenticated(t *testing.T) {
	env := newTestEnv(t, &fakeGitHub{})

	rec := env.do(t, http.MethodPut, "/api/profile", "", `{"bio":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleUpdateProfile_ValidationError(t *testing.T) {
	env := newTestEnv(t, &fakeGitHub{})

	long := strings.Repeat("x", service.MaxBioLength+1)
	rec := env.do(t, http.MethodPut, "/api/profile", "u1", `{"bio":"`+long+`"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", decodeError(t, rec).Error)
}

func TestHandleToggleFollow(t *testing.T) {
	env := newTestEnv(t, &fakeGitHub{})
	ctx := context.Background()
	require.NoError(t, env.db.EnsureMinimal(ctx, "u1", "dev1"))
	require.NoError(t, env.db.EnsureMinimal(ctx, "u2", "dev2"))

	rec := env.do(t, http.MethodPost, "/api/profiles/u2/follow", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"following":true}`, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/profiles/u2/follow", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"following":false}`, rec.Body.String())
}

func TestHandleToggleFollow_Self(t *testing.T) {
	env := newTestEnv(t, &fakeGitHub{})
	require.NoError(t, env.db.EnsureMinimal(context.Background(), "u1", "dev1"))

	rec := env.do(t, http.MethodPost, "/api/profiles/u1/follow", "u1", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_operation", decodeError(t, rec).Error)
}

func TestHandleSync_NoAccessToken(t *testing.T) {
	env := newTestEnv(t, &fakeGitHub{})
	ctx := context.Background()

	u := &model.User{GitHubID: 1, Login: "dev1"} // no stored token
	_, err := env.db.Upsert(ctx, u)
	require.NoError(t, err)

	rec := env.do(t, http.MethodPost, "/api/profile/sync", u.ID, "")
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "no_access_token", decodeError(t, rec).Error)
}

func TestHandleSync_GitHubDown(t *testing.T) {
	env := newTestEnv(t, &fakeGitHub{
		userErr: &github.APIError{StatusCode: 500, Message: "boom"},
	})
	ctx := context.Background()

	u := &model.User{GitHubID: 1, Login: "dev1", AccessToken: "tok"}
	_, err := env.db.Upsert(ctx, u)
	require.NoError(t, err)

	rec := env.do(t, http.MethodPost, "/api/profile/sync", u.ID, "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "sync_failed", decodeError(t, rec).Error)
}

func TestHandleSync_Success(t *testing.T) {
	env := newTestEnv(t, &fakeGitHub{})
	ctx := context.Background()

	u := &model.User{GitHubID: 1, Login: "dev1", AccessToken: "tok"}
	_, err := env.db.Upsert(ctx, u)
	require.NoError(t, err)

	rec := env.do(t, http.MethodPost, "/api/profile/sync", u.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var p model.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "dev1", p.GithubUsername)
	assert.Equal(t, 5, p.Stats.TotalStars)
}

func TestHandleActivity(t *testing.T) {
	env := newTestEnv(t, &fakeGitHub{})
	ctx := context.Background()

	require.NoError(t, env.db.Record(ctx, &model.ActivityEntry{UserID: "u1", Action: model.ActivityLogin}))

	rec := env.do(t, http.MethodGet, "/api/activity", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []model.ActivityEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, model.ActivityLogin, entries[0].Action)
}
