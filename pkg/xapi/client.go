package xapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"xwatch/pkg/errors"
	"xwatch/pkg/logger"
)

// Client is an X API v2 client using app-only bearer authentication
type Client struct {
	httpClient  *http.Client
	baseURL     string
	bearerToken string
	maxResults  int
	logger      logger.Logger
}

// NewClient creates a new X API client
func NewClient(baseURL, bearerToken string, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     baseURL,
		bearerToken: bearerToken,
		maxResults:  DefaultMaxResults,
		logger:      log,
	}
}

// SetMaxResults overrides the page size requested per timeline call
func (c *Client) SetMaxResults(n int) {
	if n >= MinMaxResults && n <= MaxMaxResults {
		c.maxResults = n
	}
}

// ResolveHandle maps a handle to the platform-assigned stable account id.
// The mapping is assumed stable but is resolved fresh every run.
func (c *Client) ResolveHandle(ctx context.Context, handle string) (*User, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}

	url := UserByUsernameURL(c.baseURL, handle)

	c.logger.DebugWithFields("resolving handle", map[string]interface{}{
		"handle": handle,
		"url":    url,
	})

	var response UserResponse
	if err := c.getJSON(ctx, url, &response); err != nil {
		return nil, errors.Newf(errors.ErrorTypeResolution,
			"failed to resolve user id for @%s: %v", handle, err)
	}

	if response.Data.ID == "" {
		c.logger.WarnWithFields("lookup response missing user id", map[string]interface{}{
			"handle": handle,
		})
		return nil, errors.Newf(errors.ErrorTypeResolution,
			"failed to resolve user id for @%s: response lacks an id", handle)
	}

	c.logger.DebugWithFields("handle resolved", map[string]interface{}{
		"handle":  handle,
		"user_id": response.Data.ID,
	})

	return &response.Data, nil
}

// ListPosts fetches posts authored strictly after sinceID, excluding reposts
// and replies. An empty sinceID returns the platform's default page of
// most-recent posts. Results are sorted ascending by id so the newest post
// is the last element.
func (c *Client) ListPosts(ctx context.Context, userID, sinceID string) ([]Post, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}

	url := UserPostsURL(c.baseURL, userID, sinceID, c.maxResults)

	c.logger.DebugWithFields("fetching posts", map[string]interface{}{
		"user_id":  userID,
		"since_id": sinceID,
		"url":      url,
	})

	var response TimelineResponse
	if err := c.getJSON(ctx, url, &response); err != nil {
		return nil, err
	}

	posts := response.Data
	SortPostsAscending(posts)

	c.logger.InfoWithFields("posts fetched", map[string]interface{}{
		"user_id": userID,
		"count":   len(posts),
	})

	return posts, nil
}

// requireToken rejects calls before any network I/O when the credential is
// absent
func (c *Client) requireToken() *errors.Error {
	if c.bearerToken == "" {
		return errors.New(errors.ErrorTypeAuth, "missing X_BEARER_TOKEN in environment")
	}
	return nil
}

// getJSON performs an authenticated GET request and decodes the JSON response
func (c *Client) getJSON(ctx context.Context, url string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Newf(errors.ErrorTypeUnknown, "failed to create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"url":      url,
			"error":    err.Error(),
			"duration": duration,
		})
		return errors.Newf(errors.ErrorTypeRemote, "network error: %v", err)
	}
	defer resp.Body.Close()

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      url,
		"status":   resp.StatusCode,
		"duration": duration,
	})

	if err := c.checkResponseStatus(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewWithCode(errors.ErrorTypeRemote, resp.StatusCode,
			"failed to read response body: "+err.Error())
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return errors.NewWithCode(errors.ErrorTypeParsing, resp.StatusCode,
			"failed to parse JSON: "+err.Error())
	}

	return nil
}

// checkResponseStatus maps HTTP statuses onto the error taxonomy
func (c *Client) checkResponseStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		c.logger.WarnWithFields("authentication rejected", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return errors.NewWithCode(errors.ErrorTypeAuth, resp.StatusCode,
			"bearer token rejected")
	case resp.StatusCode == http.StatusForbidden:
		c.logger.WarnWithFields("access denied", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return errors.NewWithCode(errors.ErrorTypeForbidden, resp.StatusCode,
			"403 Forbidden. Your API tier might not allow this endpoint or parameters.")
	default:
		c.logger.ErrorWithFields("unexpected API status", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return errors.NewWithCode(errors.ErrorTypeRemote, resp.StatusCode,
			"unexpected status "+resp.Status)
	}
}
