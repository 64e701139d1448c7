package probe

import (
	"context"
	"io"
	"net/http"
	"time"
)

// checkHealth performs a bounded HTTP GET and reports whether the endpoint
// answered 200 or 302. Every failure mode (timeout, refused connection,
// other status) is false, never an error.
func checkHealth(ctx context.Context, client *http.Client, endpoint string, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false
	}

	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusFound
}
