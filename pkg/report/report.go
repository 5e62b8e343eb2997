package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"xwatch/pkg/logger"
	"xwatch/pkg/xapi"
)

const (
	// PreviewLimit is the maximum preview length in characters
	PreviewLimit = 120

	// Ellipsis marks a truncated preview
	Ellipsis = "…"
)

// WIB is the fixed UTC+7 display offset (Asia/Jakarta, no DST) used for
// human-readable timestamps
var WIB = time.FixedZone("WIB", 7*60*60)

var newlines = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// FormatTime renders a UTC timestamp as a WIB wall-clock string
func FormatTime(t time.Time) string {
	return t.In(WIB).Format("2006-01-02 15:04:05") + " WIB"
}

// Preview produces a compact single-line preview of a post's text: leading
// and trailing whitespace stripped, embedded newlines collapsed to spaces,
// and anything past PreviewLimit characters replaced by an ellipsis.
func Preview(text string) string {
	text = newlines.Replace(strings.TrimSpace(text))
	runes := []rune(text)
	if len(runes) > PreviewLimit {
		return string(runes[:PreviewLimit]) + Ellipsis
	}
	return text
}

// Entry renders the two-line summary entry for a post: timestamp and
// preview, then the indented permalink.
func Entry(handle string, post xapi.Post) string {
	return fmt.Sprintf("- %s | %s\n  %s",
		FormatTime(post.CreatedAt),
		Preview(post.Text),
		xapi.PostPermalink(handle, post.ID))
}

// FileName builds the deterministic report file name for a run. The handle
// is reduced to filename-safe characters so a malformed one can never point
// the report outside the report directory; well-formed handles pass through
// unchanged.
func FileName(handle string, now time.Time) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, handle)
	return fmt.Sprintf("report_%s_%s.md", safe, now.UTC().Format("20060102T150405Z"))
}

// Writer renders run summaries to the console and to per-run report files
type Writer struct {
	dir    string
	out    io.Writer
	logger logger.Logger
}

// NewWriter creates a report writer that saves report files under dir
func NewWriter(dir string, log logger.Logger) *Writer {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Writer{
		dir:    dir,
		out:    os.Stdout,
		logger: log,
	}
}

// SetOutput redirects console output, used by tests
func (w *Writer) SetOutput(out io.Writer) {
	w.out = out
}

// PrintSummary writes the per-post console summary, one entry per post in
// the order given
func (w *Writer) PrintSummary(handle string, posts []xapi.Post) {
	fmt.Fprintf(w.out, "@%s — %d new post(s):\n", handle, len(posts))
	for _, post := range posts {
		fmt.Fprintln(w.out, Entry(handle, post))
	}
}

// PrintNoNewPosts reports the empty-result case
func (w *Writer) PrintNoNewPosts() {
	fmt.Fprintln(w.out, "No new posts since last check.")
}

// WriteReport creates a fresh report file for this run and returns its path.
// The file is never appended to; each run gets its own timestamped name.
func (w *Writer) WriteReport(handle string, posts []xapi.Post, now time.Time) (string, error) {
	if w.dir != "" && w.dir != "." {
		if err := os.MkdirAll(w.dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	path := filepath.Join(w.dir, FileName(handle, now))

	var b strings.Builder
	fmt.Fprintf(&b, "# Updates for @%s\n\n", handle)
	for _, post := range posts {
		b.WriteString(Entry(handle, post))
		b.WriteString("\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	w.logger.InfoWithFields("report written", map[string]interface{}{
		"path":  path,
		"posts": len(posts),
	})

	fmt.Fprintf(w.out, "\nSaved report: %s\n", path)
	return path, nil
}
