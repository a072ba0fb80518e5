package engine

import "errors"

// ErrInvalidContent is returned when a snapshot is empty or cannot be
// classified into a storable entry.
var ErrInvalidContent = errors.New("clipd: invalid clipboard content")

// ErrNotFound is returned when an entry id does not exist.
var ErrNotFound = errors.New("clipd: entry not found")

// ErrAdapter wraps failures talking to the system clipboard.
var ErrAdapter = errors.New("clipd: clipboard adapter failure")
