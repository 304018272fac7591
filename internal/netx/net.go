// Package netx fetches objects through presigned storage URLs.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a whole download when the caller's context has no deadline.
const DefaultTimeout = 2 * time.Minute

var httpClient = &http.Client{Timeout: DefaultTimeout}

// DownloadFromPresignedURL issues a GET against url and copies the body to w.
// It returns the number of bytes written. Any status other than 200 is an
// error that carries the response status and the start of the body.
func DownloadFromPresignedURL(ctx context.Context, url string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("download failed: %s; body: %s", resp.Status, string(b))
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("download body: %w", err)
	}
	return n, nil
}
