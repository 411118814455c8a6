package storage

import "errors"

// ErrRunNotFound is returned when no stored run matches the requested ID.
var ErrRunNotFound = errors.New("run not found")
