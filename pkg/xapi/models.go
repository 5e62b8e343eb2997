package xapi

import "time"

// UserResponse is the envelope returned by the user lookup endpoint
type UserResponse struct {
	Data   User       `json:"data"`
	Errors []APIError `json:"errors,omitempty"`
}

// User represents a resolved X account
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// TimelineResponse is the envelope returned by the user tweets endpoint
type TimelineResponse struct {
	Data   []Post       `json:"data"`
	Meta   TimelineMeta `json:"meta"`
	Errors []APIError   `json:"errors,omitempty"`
}

// TimelineMeta contains result metadata for a timeline page
type TimelineMeta struct {
	ResultCount int    `json:"result_count"`
	NewestID    string `json:"newest_id"`
	OldestID    string `json:"oldest_id"`
}

// Post represents a single post. IDs are numeric strings that the platform
// guarantees increase with creation time.
type Post struct {
	ID            string         `json:"id"`
	Text          string         `json:"text"`
	CreatedAt     time.Time      `json:"created_at"`
	Lang          string         `json:"lang,omitempty"`
	PublicMetrics *PublicMetrics `json:"public_metrics,omitempty"`
}

// PublicMetrics holds the engagement counters attached to a post
type PublicMetrics struct {
	RetweetCount int `json:"retweet_count"`
	ReplyCount   int `json:"reply_count"`
	LikeCount    int `json:"like_count"`
	QuoteCount   int `json:"quote_count"`
}

// APIError is an error object embedded in an otherwise well-formed response
type APIError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Type   string `json:"type"`
}
