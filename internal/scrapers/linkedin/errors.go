package linkedin

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrRetriesExceeded aborts a run after too many consecutive rate limited
// fetches of the same page.
var ErrRetriesExceeded = errors.New("rate limit retries exceeded")

// ErrRateLimited marks a fetch answered with a rate limit signal. It drives
// backoff and never escapes Run.
var ErrRateLimited = errors.New("rate limited")

// StatusLinkedInBlocked is the non-standard status LinkedIn answers with when
// it suspects automation, it is treated like 429.
const StatusLinkedInBlocked = 999

// StatusError is a non-success, non rate limit response.
type StatusError struct {
	Status int
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s from %s", e.Status, http.StatusText(e.Status), e.URL)
}

func isRateLimit(status int) bool {
	return status == http.StatusTooManyRequests || status == StatusLinkedInBlocked
}

// checkStatus classifies a response status.
func checkStatus(res Response, url string) error {
	if isRateLimit(res.Status) {
		return ErrRateLimited
	}
	if res.Status < 200 || res.Status > 299 {
		return &StatusError{Status: res.Status, URL: url}
	}
	return nil
}
