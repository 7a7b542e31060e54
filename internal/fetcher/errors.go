package fetcher

import (
	"fmt"
)

// FetchError is returned when a fetch fails. Terminal errors (4xx other than
// 408/429) fail immediately without consuming retry budget; transient errors
// carry the number of attempts made before giving up.
type FetchError struct {
	URL        string
	StatusCode int
	Terminal   bool
	Attempts   int
	Err        error
}

func (e *FetchError) Error() string {
	kind := "transient"
	if e.Terminal {
		kind = "terminal"
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s failed (%s, status %d, attempts %d): %v",
			e.URL, kind, e.StatusCode, e.Attempts, e.Err)
	}
	return fmt.Sprintf("fetch %s failed (%s, status %d, attempts %d)",
		e.URL, kind, e.StatusCode, e.Attempts)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
