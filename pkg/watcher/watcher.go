package watcher

import (
	"context"
	"time"

	"xwatch/pkg/config"
	"xwatch/pkg/errors"
	"xwatch/pkg/logger"
	"xwatch/pkg/report"
	"xwatch/pkg/state"
	"xwatch/pkg/xapi"
)

// Watcher orchestrates a single watch run: resolve the handle, fetch posts
// past the stored watermark, advance the watermark, and emit the report
type Watcher struct {
	client   XClient
	store    *state.Store
	reporter *report.Writer
	logger   logger.Logger
	now      func() time.Time
}

// RunResult summarizes what a run did
type RunResult struct {
	Handle     string
	UserID     string
	NewPosts   int
	Watermark  string
	ReportPath string
}

// New creates a Watcher wired to the real API client, state store, and
// report writer
func New(cfg *config.Config) (*Watcher, error) {
	log := logger.GetLogger()

	client := xapi.NewClient(cfg.X.BaseURL, cfg.X.BearerToken, cfg.X.RequestTimeout, log)
	client.SetMaxResults(cfg.Watch.MaxResults)

	return &Watcher{
		client:   client,
		store:    state.NewStore(cfg.Watch.StateFile, log),
		reporter: report.NewWriter(cfg.Report.Directory, log),
		logger:   log,
		now:      time.Now,
	}, nil
}

// SetClient replaces the network boundary, used by tests
func (w *Watcher) SetClient(client XClient) {
	w.client = client
}

// SetReporter replaces the report writer, used by tests
func (w *Watcher) SetReporter(reporter *report.Writer) {
	w.reporter = reporter
}

// SetLogger replaces the logger, used by tests
func (w *Watcher) SetLogger(log logger.Logger) {
	w.logger = log
}

// SetNow fixes the clock for deterministic report file names
func (w *Watcher) SetNow(now func() time.Time) {
	w.now = now
}

// Run executes one complete watch cycle for the handle. The watermark is
// advanced and saved only when at least one new post was fetched; an empty
// result leaves the state file untouched.
func (w *Watcher) Run(ctx context.Context, handle string) (*RunResult, error) {
	handle = xapi.SanitizeHandle(handle)
	if handle == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "handle must not be empty")
	}

	w.logger.InfoWithFields("starting watch run", map[string]interface{}{
		"handle": handle,
	})

	user, err := w.client.ResolveHandle(ctx, handle)
	if err != nil {
		return nil, err
	}

	marks, err := w.store.Load()
	if err != nil {
		// Load downgrades corruption internally; anything else is fatal
		return nil, errors.Newf(errors.ErrorTypePersistence, "failed to load state: %v", err)
	}
	sinceID := marks.SinceID(handle)

	w.logger.DebugWithFields("watermark loaded", map[string]interface{}{
		"handle":   handle,
		"user_id":  user.ID,
		"since_id": sinceID,
	})

	posts, err := w.client.ListPosts(ctx, user.ID, sinceID)
	if err != nil {
		return nil, err
	}

	result := &RunResult{
		Handle:    handle,
		UserID:    user.ID,
		NewPosts:  len(posts),
		Watermark: sinceID,
	}

	if len(posts) == 0 {
		w.logger.InfoWithFields("no new posts", map[string]interface{}{
			"handle":   handle,
			"since_id": sinceID,
		})
		w.reporter.PrintNoNewPosts()
		return result, nil
	}

	// Posts arrive sorted ascending; the last element is the newest
	newestID := posts[len(posts)-1].ID
	marks.Advance(handle, newestID)
	if err := w.store.Save(marks); err != nil {
		return nil, errors.Newf(errors.ErrorTypePersistence, "failed to save state: %v", err)
	}
	result.Watermark = newestID

	w.logger.InfoWithFields("watermark advanced", map[string]interface{}{
		"handle":   handle,
		"since_id": newestID,
		"posts":    len(posts),
	})

	w.reporter.PrintSummary(handle, posts)

	path, err := w.reporter.WriteReport(handle, posts, w.now())
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypePersistence, "failed to write report: %v", err)
	}
	result.ReportPath = path

	return result, nil
}
