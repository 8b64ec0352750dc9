package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avela-io/authserv/internal/models"
)

func attemptPtr(n int) *int { return &n }

func newTestClient(serverURL string) *Client {
	return NewClient(
		WithBaseURL(serverURL),
		WithTimeout(2*time.Second),
		WithRateLimit(100),
	)
}

func TestFindByUsername(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/users/search/by-username", r.URL.Path)
		assert.Equal(t, "alice", r.URL.Query().Get("username"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.DirectoryUser{
			ID:             "42",
			Username:       "alice",
			PasswordHash:   "$2a$10$hash",
			Enabled:        true,
			FailedAttempts: attemptPtr(1),
			Roles:          []string{"ROLE_ADMIN"},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	user, err := client.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, "42", user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "$2a$10$hash", user.PasswordHash)
	assert.True(t, user.Enabled)
	assert.Equal(t, 1, user.AttemptCount())
	assert.Equal(t, []string{"ROLE_ADMIN"}, user.Roles)
}

func TestFindByUsername_EscapesQuery(t *testing.T) {
	var gotUsername string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUsername = r.URL.Query().Get("username")
		json.NewEncoder(w).Encode(models.DirectoryUser{ID: "1", Username: gotUsername})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FindByUsername(context.Background(), "a&b=c d")
	require.NoError(t, err)
	assert.Equal(t, "a&b=c d", gotUsername)
}

func TestFindByUsername_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.False(t, IsUnavailable(err))
}

func TestFindByUsername_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FindByUsername(context.Background(), "alice")
	require.Error(t, err)
	assert.True(t, IsUnavailable(err))

	var ue *UnavailableError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusInternalServerError, ue.StatusCode)
}

func TestFindByUsername_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	client := newTestClient(server.URL)
	_, err := client.FindByUsername(context.Background(), "alice")
	assert.True(t, IsUnavailable(err))
}

func TestFindByUsername_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FindByUsername(context.Background(), "alice")
	assert.True(t, IsUnavailable(err))
}

func TestUpdate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/users/42", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body models.DirectoryUser
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice", body.Username)
		assert.Equal(t, 2, body.AttemptCount())
		assert.False(t, body.Enabled)

		json.NewEncoder(w).Encode(body)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	updated, err := client.Update(context.Background(), &models.DirectoryUser{
		ID:             "42",
		Username:       "alice",
		Enabled:        false,
		FailedAttempts: attemptPtr(2),
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", updated.Username)
	assert.Equal(t, 2, updated.AttemptCount())
}

func TestUpdate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Update(context.Background(), &models.DirectoryUser{ID: "42", Username: "alice"})
	assert.True(t, IsUnavailable(err))
}

func TestUpdate_EscapesUserID(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		json.NewEncoder(w).Encode(models.DirectoryUser{ID: "a/b"})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Update(context.Background(), &models.DirectoryUser{ID: "a/b", Username: "x"})
	require.NoError(t, err)
	assert.Equal(t, "/users/a%2Fb", gotPath)
}

func TestClientDefaults(t *testing.T) {
	client := NewClient()
	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
}
