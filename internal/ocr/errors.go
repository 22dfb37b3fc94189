package ocr

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredentials means the adapter cannot run at all; the
	// wrapping message names the configuration to set.
	ErrMissingCredentials = errors.New("missing provider credentials")
	// ErrPollTimeout means the vendor accepted the job but did not finish
	// within the bounded polling window. Distinct from transport failure
	// so callers can tell slowness from breakage.
	ErrPollTimeout = errors.New("polling timed out")
	// ErrProviderFailed means the vendor reported a terminal failure for
	// an accepted job.
	ErrProviderFailed = errors.New("provider reported failure")
)

// httpError formats a non-2xx vendor response with a truncated body.
func httpError(op string, status int, body []byte) error {
	return fmt.Errorf("%s: http %d: %s", op, status, truncate(string(body), 300))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
