package health

import (
	"context"
	"net/http"
	"runtime"

	"github.com/go-faster/errors"
)

// GoroutineCountCheck reports unhealthy when the goroutine count exceeds
// threshold, a cheap liveness signal for goroutine leaks.
func GoroutineCountCheck(threshold int) CheckFunc {
	return func(_ context.Context) error {
		if count := runtime.NumGoroutine(); count > threshold {
			return errors.Errorf("goroutine count %d exceeds threshold %d", count, threshold)
		}
		return nil
	}
}

// EndpointCheck reports unhealthy when a HEAD request to url fails at the
// transport level or returns a 5xx. Upstream 4xx responses still count as
// reachable: the readiness question is whether the endpoint answers at all.
func EndpointCheck(client *http.Client, url string) CheckFunc {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
		if err != nil {
			return errors.Wrap(err, "build request")
		}
		resp, err := client.Do(req)
		if err != nil {
			return errors.Wrap(err, "reach endpoint")
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return errors.Errorf("endpoint returned status %d", resp.StatusCode)
		}
		return nil
	}
}
