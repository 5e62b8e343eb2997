package xapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xwatch/pkg/errors"
	"xwatch/pkg/logger"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestResolveHandle(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/by/username/alice", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"id":"42","name":"Alice","username":"alice"}}`))
	})

	client := NewClient(server.URL, "test-token", 30*time.Second, logger.NewTestLogger())
	user, err := client.ResolveHandle(context.Background(), "alice")

	require.NoError(t, err)
	assert.Equal(t, "42", user.ID)
	assert.Equal(t, "alice", user.Username)
}

func TestResolveHandleMissingID(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"title":"Not Found Error","detail":"no user"}]}`))
	})

	client := NewClient(server.URL, "test-token", 30*time.Second, logger.NewTestLogger())
	_, err := client.ResolveHandle(context.Background(), "nosuchuser")

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeResolution))
}

func TestResolveHandleRemoteFailure(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	client := NewClient(server.URL, "test-token", 30*time.Second, logger.NewTestLogger())
	_, err := client.ResolveHandle(context.Background(), "alice")

	// Lookup failures surface as resolution errors regardless of cause
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeResolution))
}

func TestListPosts(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/42/tweets", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "25", q.Get("max_results"))
		assert.Equal(t, "retweets,replies", q.Get("exclude"))
		assert.Equal(t, "created_at,public_metrics,lang", q.Get("tweet.fields"))
		assert.Equal(t, "9", q.Get("since_id"))

		// Platform returns newest-first-ish; client must re-sort ascending
		w.Write([]byte(`{"data":[
			{"id":"12","text":"third","created_at":"2024-05-01T12:02:00.000Z"},
			{"id":"10","text":"first","created_at":"2024-05-01T12:00:00.000Z"},
			{"id":"11","text":"second","created_at":"2024-05-01T12:01:00.000Z"}
		],"meta":{"result_count":3,"newest_id":"12","oldest_id":"10"}}`))
	})

	client := NewClient(server.URL, "test-token", 30*time.Second, logger.NewTestLogger())
	posts, err := client.ListPosts(context.Background(), "42", "9")

	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, []string{"10", "11", "12"}, []string{posts[0].ID, posts[1].ID, posts[2].ID})
	assert.Equal(t, "first", posts[0].Text)
	assert.Equal(t, 2024, posts[0].CreatedAt.Year())
}

func TestListPostsEmpty(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meta":{"result_count":0}}`))
	})

	client := NewClient(server.URL, "test-token", 30*time.Second, logger.NewTestLogger())
	posts, err := client.ListPosts(context.Background(), "42", "12")

	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestListPostsForbidden(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	client := NewClient(server.URL, "test-token", 30*time.Second, logger.NewTestLogger())
	_, err := client.ListPosts(context.Background(), "42", "")

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeForbidden))
	assert.Contains(t, err.Error(), "API tier")
}

func TestListPostsRemoteError(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	client := NewClient(server.URL, "test-token", 30*time.Second, logger.NewTestLogger())
	_, err := client.ListPosts(context.Background(), "42", "")

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeRemote))
}

func TestMissingTokenFailsBeforeNetwork(t *testing.T) {
	var calls atomic.Int32
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	client := NewClient(server.URL, "", 30*time.Second, logger.NewTestLogger())

	_, err := client.ResolveHandle(context.Background(), "alice")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeAuth))

	_, err = client.ListPosts(context.Background(), "42", "")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeAuth))

	assert.Zero(t, calls.Load(), "no network call may be made without a token")
}

func TestListPostsParseError(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	client := NewClient(server.URL, "test-token", 30*time.Second, logger.NewTestLogger())
	_, err := client.ListPosts(context.Background(), "42", "")

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeParsing))
}
