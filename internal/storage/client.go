// Package storage is a client for the external object storage collaborator.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client uploads objects and resolves their public URLs. Buckets in use are
// the video and avatar buckets; paths are scoped by user id and timestamp so
// they cannot collide.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a storage client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Upload stores an object and returns its public URL.
func (c *Client) Upload(ctx context.Context, bucket, path string, body io.Reader, contentType string) (string, error) {
	url := fmt.Sprintf("%s/object/%s/%s", c.baseURL, bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload to storage: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("storage returned status %d: %s", resp.StatusCode, string(msg))
	}

	return c.PublicURL(bucket, path), nil
}

// PublicURL returns the public URL for an object path.
func (c *Client) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", c.baseURL, bucket, path)
}

// UserScopedPath builds a collision-free object path for a user upload.
func UserScopedPath(userID, filename string, now time.Time) string {
	ext := ""
	if i := strings.LastIndex(filename, "."); i >= 0 {
		ext = filename[i:]
	}
	return fmt.Sprintf("%s/%d%s", userID, now.UnixMilli(), ext)
}
