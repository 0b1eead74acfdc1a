package artifact

import "errors"

// ErrNotFound is returned when the requested artifact id is not registered.
var ErrNotFound = errors.New("artifact not found")
