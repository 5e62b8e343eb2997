package watcher

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xwatch/pkg/config"
	"xwatch/pkg/errors"
	"xwatch/pkg/logger"
	"xwatch/pkg/report"
	"xwatch/pkg/xapi"
)

// fixtureClient returns canned responses instead of hitting the network
type fixtureClient struct {
	user        *xapi.User
	resolveErr  error
	posts       []xapi.Post
	listErr     error
	gotSinceIDs []string
}

func (f *fixtureClient) ResolveHandle(ctx context.Context, handle string) (*xapi.User, error) {
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	return f.user, nil
}

func (f *fixtureClient) ListPosts(ctx context.Context, userID, sinceID string) ([]xapi.Post, error) {
	f.gotSinceIDs = append(f.gotSinceIDs, sinceID)
	if f.listErr != nil {
		return nil, f.listErr
	}
	posts := make([]xapi.Post, len(f.posts))
	copy(posts, f.posts)
	xapi.SortPostsAscending(posts)
	return posts, nil
}

type testEnv struct {
	watcher   *Watcher
	client    *fixtureClient
	stateFile string
	reportDir string
	console   *bytes.Buffer
}

func newTestEnv(t *testing.T, client *fixtureClient) *testEnv {
	t.Helper()

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.X.BearerToken = "test-token"
	cfg.Watch.StateFile = filepath.Join(dir, "state.json")
	cfg.Report.Directory = filepath.Join(dir, "reports")

	w, err := New(cfg)
	require.NoError(t, err)

	console := &bytes.Buffer{}
	reporter := report.NewWriter(cfg.Report.Directory, logger.NewTestLogger())
	reporter.SetOutput(console)

	w.SetClient(client)
	w.SetReporter(reporter)
	w.SetLogger(logger.NewTestLogger())
	w.SetNow(func() time.Time {
		return time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)
	})

	return &testEnv{
		watcher:   w,
		client:    client,
		stateFile: cfg.Watch.StateFile,
		reportDir: cfg.Report.Directory,
		console:   console,
	}
}

func makePost(id, text string) xapi.Post {
	return xapi.Post{
		ID:        id,
		Text:      text,
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestFirstRunReportsAndAdvancesWatermark(t *testing.T) {
	client := &fixtureClient{
		user: &xapi.User{ID: "42", Username: "alice"},
		// Platform order is newest-first-ish and unordered here
		posts: []xapi.Post{makePost("10", "a"), makePost("12", "c"), makePost("11", "b")},
	}
	env := newTestEnv(t, client)

	result, err := env.watcher.Run(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, 3, result.NewPosts)
	assert.Equal(t, "12", result.Watermark)

	// First run passes no watermark
	require.Equal(t, []string{""}, client.gotSinceIDs)

	// Summary lists posts in ascending id order
	out := env.console.String()
	i10 := strings.Index(out, "status/10")
	i11 := strings.Index(out, "status/11")
	i12 := strings.Index(out, "status/12")
	assert.True(t, i10 >= 0 && i10 < i11 && i11 < i12, "summary out of order: %q", out)

	// State file holds the newest id under the lowercased handle
	data, err := os.ReadFile(env.stateFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"alice"`)
	assert.Contains(t, string(data), `"since_id": "12"`)

	// Report file exists and carries the heading
	content, err := os.ReadFile(result.ReportPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "# Updates for @alice\n"))
}

func TestNoNewPostsLeavesStateUntouched(t *testing.T) {
	client := &fixtureClient{
		user:  &xapi.User{ID: "42", Username: "alice"},
		posts: []xapi.Post{makePost("12", "c")},
	}
	env := newTestEnv(t, client)

	_, err := env.watcher.Run(context.Background(), "alice")
	require.NoError(t, err)

	before, err := os.ReadFile(env.stateFile)
	require.NoError(t, err)
	stat, err := os.Stat(env.stateFile)
	require.NoError(t, err)
	modBefore := stat.ModTime()

	// Second run: watermark equals the newest post, nothing new comes back
	client.posts = nil
	env.console.Reset()

	result, err := env.watcher.Run(context.Background(), "alice")
	require.NoError(t, err)

	assert.Zero(t, result.NewPosts)
	assert.Equal(t, "12", result.Watermark)
	assert.Equal(t, []string{"", "12"}, client.gotSinceIDs)
	assert.Contains(t, env.console.String(), "No new posts since last check.")

	// Byte-for-byte unchanged state file, no new report
	after, err := os.ReadFile(env.stateFile)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	stat, err = os.Stat(env.stateFile)
	require.NoError(t, err)
	assert.Equal(t, modBefore, stat.ModTime())
	assert.Empty(t, result.ReportPath)
}

func TestWatermarkNeverDecreases(t *testing.T) {
	client := &fixtureClient{
		user:  &xapi.User{ID: "42", Username: "alice"},
		posts: []xapi.Post{makePost("100", "x")},
	}
	env := newTestEnv(t, client)

	_, err := env.watcher.Run(context.Background(), "alice")
	require.NoError(t, err)

	// A later batch with only older ids must not move the watermark back
	client.posts = []xapi.Post{makePost("99", "stale")}
	result, err := env.watcher.Run(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, "100", result.Watermark)
	data, err := os.ReadFile(env.stateFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"since_id": "100"`)
}

func TestResolveFailureAborts(t *testing.T) {
	client := &fixtureClient{
		resolveErr: errors.New(errors.ErrorTypeResolution, "failed to resolve user id for @ghost"),
	}
	env := newTestEnv(t, client)

	_, err := env.watcher.Run(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeResolution))

	// No fetch, no state file
	assert.Empty(t, client.gotSinceIDs)
	_, statErr := os.Stat(env.stateFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFetchFailureLeavesStateUntouched(t *testing.T) {
	client := &fixtureClient{
		user:    &xapi.User{ID: "42", Username: "alice"},
		listErr: errors.NewWithCode(errors.ErrorTypeForbidden, 403, "denied"),
	}
	env := newTestEnv(t, client)

	_, err := env.watcher.Run(context.Background(), "alice")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeForbidden))

	_, statErr := os.Stat(env.stateFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestHandleIsSanitized(t *testing.T) {
	client := &fixtureClient{
		user:  &xapi.User{ID: "42", Username: "alice"},
		posts: []xapi.Post{makePost("10", "a")},
	}
	env := newTestEnv(t, client)

	result, err := env.watcher.Run(context.Background(), "@Alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", result.Handle)

	// Keys are lowercased regardless of display casing
	data, err := os.ReadFile(env.stateFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"alice"`)
}

func TestEmptyHandleIsConfigError(t *testing.T) {
	env := newTestEnv(t, &fixtureClient{})

	_, err := env.watcher.Run(context.Background(), "  @ ")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}
