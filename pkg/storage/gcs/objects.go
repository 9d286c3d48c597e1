package gcs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	defaultAPIBase    = "https://storage.googleapis.com/storage/v1"
	defaultUploadBase = "https://storage.googleapis.com/upload/storage/v1"
	defaultPublicBase = "https://storage.googleapis.com"
)

// ErrObjectNotFound reports a delete or read against an object that does not
// exist. Callers treat it as success when removing media.
var ErrObjectNotFound = errors.New("gcs: object not found")

func (c *Client) objectAPIBase() string {
	if c.apiBase != "" {
		return c.apiBase
	}
	return defaultAPIBase
}

func (c *Client) objectUploadBase() string {
	if c.uploadBase != "" {
		return c.uploadBase
	}
	return defaultUploadBase
}

// ObjectURL returns the public URL the website serves the object from.
func (c *Client) ObjectURL(bucket, key string) string {
	base := c.publicBase
	if base == "" {
		base = defaultPublicBase
	}
	escaped := make([]string, 0, 4)
	for _, part := range strings.Split(key, "/") {
		escaped = append(escaped, url.PathEscape(part))
	}
	return fmt.Sprintf("%s/%s/%s", base, url.PathEscape(bucket), strings.Join(escaped, "/"))
}

// UploadObject writes data under key using the JSON API's simple media upload
// and returns the object's public URL.
func (c *Client) UploadObject(ctx context.Context, bucket, key, contentType string, data []byte) (string, error) {
	if c == nil || c.tokenSource == nil {
		return "", errors.New("gcs client not initialized")
	}
	if bucket == "" {
		bucket = c.defaultBucket
	}
	if key == "" {
		return "", errors.New("gcs object key is required")
	}

	token, err := c.tokenSource.Token(ctx)
	if err != nil {
		return "", err
	}

	u := fmt.Sprintf(
		"%s/b/%s/o?uploadType=media&name=%s",
		c.objectUploadBase(),
		url.PathEscape(bucket),
		url.QueryEscape(key),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", statusError("upload", resp)
	}

	var obj struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&obj); err != nil {
		return "", fmt.Errorf("decoding upload response: %w", err)
	}
	if obj.Name != "" {
		key = obj.Name
	}

	return c.ObjectURL(bucket, key), nil
}

// DeleteObject removes the object at key. A missing object surfaces as
// ErrObjectNotFound so callers can decide whether absence is acceptable.
func (c *Client) DeleteObject(ctx context.Context, bucket, key string) error {
	if c == nil || c.tokenSource == nil {
		return errors.New("gcs client not initialized")
	}
	if bucket == "" {
		bucket = c.defaultBucket
	}
	if key == "" {
		return errors.New("gcs object key is required")
	}

	token, err := c.tokenSource.Token(ctx)
	if err != nil {
		return err
	}

	u := fmt.Sprintf(
		"%s/b/%s/o/%s",
		c.objectAPIBase(),
		url.PathEscape(bucket),
		url.PathEscape(key),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return ErrObjectNotFound
	default:
		return statusError("delete", resp)
	}
}

func statusError(op string, resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	if len(b) > 0 {
		return fmt.Errorf("gcs %s failed: %s: %s", op, resp.Status, strings.TrimSpace(string(b)))
	}
	return fmt.Errorf("gcs %s failed: %s", op, resp.Status)
}
