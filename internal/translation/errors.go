package translation

import (
	"errors"
	"fmt"

	"horse.fit/easydict/internal/backend"
)

var (
	ErrProviderNotRegistered = errors.New("translation provider is not registered")
	ErrMalformedResponse     = errors.New("malformed backend response")
	ErrMissingCredentials    = errors.New("missing backend credentials")
)

// BackendError is a failure the backend reported in its own vocabulary.
type BackendError struct {
	Backend backend.ID
	Code    string
	Message string
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s error code %s", e.Backend, e.Code)
	}
	return fmt.Sprintf("%s error code %s: %s", e.Backend, e.Code, e.Message)
}
