package search

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyQuery is the only user-correctable search failure.
var ErrEmptyQuery = errors.New("query must not be empty")

// RemoteError marks a failure of an external collaborator (embedding
// API or the search function's database).
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// IsBackendMissing reports whether an error looks like the search
// function not being installed in the target database, as opposed to an
// ordinary query failure. Covers Postgres 42883 wording and the hosted
// API's "could not find the function" phrasing.
func IsBackendMissing(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "function") {
		return false
	}
	return strings.Contains(msg, "does not exist") ||
		strings.Contains(msg, "not found") ||
		strings.Contains(msg, "could not find")
}
