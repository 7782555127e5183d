package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient returns a Client pointed at a test server that runs handler.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(srv.Client())
	c.baseURL = srv.URL
	return c
}

func TestUser_SendsAuthHeaders(t *testing.T) {
	var gotAuth, gotAgent, gotAccept string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{"login":"dev1","html_url":"https://github.com/dev1","public_repos":3}`))
	})

	user, err := client.User(context.Background(), "tok123")
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok123", gotAuth)
	assert.Equal(t, "devhub", gotAgent)
	assert.Equal(t, "application/vnd.github.v3+json", gotAccept)
	assert.Equal(t, "dev1", user.Login)
	assert.Equal(t, 3, user.PublicRepos)
}

func TestUser_NullFieldsDecodeToZero(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"login":"dev1","bio":null,"location":null,"company":null}`))
	})

	user, err := client.User(context.Background(), "tok")
	require.NoError(t, err)

	assert.Equal(t, "", user.Bio)
	assert.Equal(t, "", user.Location)
	assert.Equal(t, "", user.Company)
}

func TestRepositories_QueryParams(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/repos", r.URL.Path)
		assert.Equal(t, "updated", r.URL.Query().Get("sort"))
		assert.Equal(t, "desc", r.URL.Query().Get("direction"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		w.Write([]byte(`[{"name":"a","stargazers_count":7,"language":null}]`))
	})

	repos, err := client.Repositories(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, 7, repos[0].StargazersCount)
	assert.Equal(t, "", repos[0].Language)
}

func TestEvents_PathEscapesLogin(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/dev1/events", r.URL.Path)
		w.Write([]byte(`[{"type":"PushEvent","repo":{"name":"dev1/x"}}]`))
	})

	events, err := client.Events(context.Background(), "tok", "dev1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "PushEvent", events[0].Type)
	assert.Equal(t, "dev1/x", events[0].Repo.Name)
}

func TestGet_ErrorStatusUsesGitHubMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Bad credentials"}`))
	})

	_, err := client.User(context.Background(), "expired")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Bad credentials", apiErr.Message)
}

func TestGet_ErrorStatusFallsBackToStatusText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>not json</html>`))
	})

	_, err := client.User(context.Background(), "tok")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestGet_NetworkErrorHasZeroStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewClient(srv.Client())
	client.baseURL = srv.URL
	srv.Close() // connection refused from here on

	_, err := client.User(context.Background(), "tok")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 0, apiErr.StatusCode)
}

func TestGet_ContextCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.User(ctx, "tok")
	require.Error(t, err)
}
