package insuranceapi

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("insurance not found")

	// ErrUnauthenticated indicates the caller has no valid backend session.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInvalidQuery indicates search criteria the API refuses (no name given).
	ErrInvalidQuery = errors.New("invalid search criteria")
)

// StatusError is an unexpected non-2xx API response.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.Status)
}
