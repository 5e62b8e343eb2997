// Package xapi implements the thin X API v2 surface the watcher consumes:
// the "resolve handle to user id" lookup and the "list posts by user id"
// timeline page. Requests use app-only bearer authentication with a bounded
// per-request timeout and no retries; failures are classified through the
// errors package so the top level can report them as a single diagnostic.
package xapi
