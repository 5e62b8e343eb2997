package xapi

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

const (
	// DefaultBaseURL is the x.com alias for the api.twitter.com v2 endpoints
	DefaultBaseURL = "https://api.x.com/2"

	// PermalinkBase is the public site used for post permalinks
	PermalinkBase = "https://x.com"

	// DefaultMaxResults is the page size requested per timeline call
	DefaultMaxResults = 25

	// MinMaxResults and MaxMaxResults are the bounds the API accepts
	MinMaxResults = 5
	MaxMaxResults = 100

	// TweetFields is the field selection requested for each post
	TweetFields = "created_at,public_metrics,lang"

	// ExcludeFilter drops reposts and replies so only original content is
	// reported
	ExcludeFilter = "retweets,replies"
)

// UserByUsernameURL constructs the URL for resolving a handle to a user id
func UserByUsernameURL(baseURL, handle string) string {
	params := url.Values{}
	params.Set("user.fields", "name,username")

	return fmt.Sprintf("%s/users/by/username/%s?%s", baseURL, url.PathEscape(handle), params.Encode())
}

// UserPostsURL constructs the URL for fetching a user's recent posts.
// sinceID may be empty on a first run, in which case the platform's default
// page of most-recent posts is returned.
func UserPostsURL(baseURL, userID, sinceID string, maxResults int) string {
	if maxResults < MinMaxResults || maxResults > MaxMaxResults {
		maxResults = DefaultMaxResults
	}

	params := url.Values{}
	params.Set("max_results", fmt.Sprintf("%d", maxResults))
	params.Set("exclude", ExcludeFilter)
	params.Set("tweet.fields", TweetFields)
	if sinceID != "" {
		params.Set("since_id", sinceID)
	}

	return fmt.Sprintf("%s/users/%s/tweets?%s", baseURL, url.PathEscape(userID), params.Encode())
}

// PostPermalink constructs the public URL for a specific post
func PostPermalink(handle, postID string) string {
	if handle == "" || postID == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/status/%s", PermalinkBase, handle, postID)
}

// IsValidHandle checks if a handle is valid according to X rules
func IsValidHandle(handle string) bool {
	if handle == "" || len(handle) > 15 {
		return false
	}

	// X handles can only contain letters, numbers, and underscores
	for _, char := range handle {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '_') {
			return false
		}
	}

	return true
}

// SanitizeHandle removes decoration users commonly paste along with a handle
func SanitizeHandle(handle string) string {
	handle = strings.TrimSpace(handle)
	handle = strings.TrimPrefix(handle, "@")
	handle = strings.TrimSuffix(handle, "/")
	return handle
}

// CompareIDs orders two numeric post id strings. Shorter strings are smaller;
// equal-length strings compare lexicographically, which matches numeric order
// for the platform's unpadded decimal ids.
func CompareIDs(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// SortPostsAscending orders posts oldest-first by id, in place. The platform
// returns newest-first; reports read chronologically and take the last
// element as the new watermark.
func SortPostsAscending(posts []Post) {
	sort.Slice(posts, func(i, j int) bool {
		return CompareIDs(posts[i].ID, posts[j].ID) < 0
	})
}
