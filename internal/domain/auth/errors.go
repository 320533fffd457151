package auth

import "errors"

// ErrDisabled is returned when no signing secret is configured.
var ErrDisabled = errors.New("bearer identity disabled")
