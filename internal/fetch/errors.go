package fetch

import (
	"errors"
	"fmt"
)

// Common fetch errors.
var (
	ErrInvalidRootURL = errors.New("invalid root URL")
	ErrEmptyID        = errors.New("item id cannot be empty")
	ErrNilFetcher     = errors.New("fetcher cannot be nil")
)

// maxErrorBody is the number of response body bytes kept on a StatusError.
const maxErrorBody = 512

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.Code, e.Body)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.Code)
}

// IsNotFound reports whether err is a 404 StatusError.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Code == 404
}

func truncateBody(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody])
	}
	return string(body)
}
