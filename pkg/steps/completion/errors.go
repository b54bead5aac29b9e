package completion

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrMissingCredential is returned when no API key could be found for a
// backend that needs one.
var ErrMissingCredential = errors.New("missing completion api key")

var ErrMissingClientSettings = errors.New("missing client settings")

var ErrNoChoices = errors.New("no choices returned from completion backend")

// BackendError wraps any failure of the remote completion call. A failed
// generation must never be recorded as a bot response.
type BackendError struct {
	Engine string
	Err    error
}

func (e *BackendError) Error() string {
	if e.Engine == "" {
		return fmt.Sprintf("completion backend: %v", e.Err)
	}
	return fmt.Sprintf("completion backend (%s): %v", e.Engine, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func (e *BackendError) Cause() error {
	return e.Err
}
