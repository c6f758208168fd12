package sdk

import "fmt"

// APIError is returned when the server responds with a non-2xx status.
// Under normal operation the server never does this; seeing one means
// the server failed to persist a mutation.
type APIError struct {
	Operation  string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("taskd: %s: server returned %d", e.Operation, e.StatusCode)
}
