package watcher

import (
	"context"

	"xwatch/pkg/xapi"
)

// XClient defines the network capability the watcher needs, so tests can
// substitute a fixture returning canned responses
type XClient interface {
	ResolveHandle(ctx context.Context, handle string) (*xapi.User, error)
	ListPosts(ctx context.Context, userID, sinceID string) ([]xapi.Post, error)
}
