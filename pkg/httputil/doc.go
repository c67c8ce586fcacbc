// Package httputil fetches card thumbnails over HTTP.
//
//   - [Fetch]: a GET that marks transient failures as [RetryableError]
//   - [Backoff]: retries those failures with a doubling delay
//
// Transient failures are network errors, 5xx responses and 429 responses.
// A Retry-After header on a 429 or 503 overrides the next delay.
//
//	var body []byte
//	err := httputil.DefaultBackoff.Do(ctx, func() error {
//	    var err error
//	    body, err = httputil.Fetch(ctx, client, url)
//	    return err
//	})
package httputil
