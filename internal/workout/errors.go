// Package workout holds the domain logic: the template registry, the
// rotating split engine, the session recorder and the read-side
// analytics. Everything persists through internal/store.
package workout

import "errors"

// ErrValidation marks synchronous rejections of bad input. Nothing is
// mutated when a wrapped ErrValidation is returned.
var ErrValidation = errors.New("validation failed")

// ErrNotFound marks lookups of splits or templates that do not exist.
var ErrNotFound = errors.New("not found")

// ErrLastSplit is returned when a delete would leave zero splits.
var ErrLastSplit = errors.New("cannot delete the last remaining split")

// ErrNoActiveSession is returned by recorder operations that need an
// in-progress session when none has been started.
var ErrNoActiveSession = errors.New("no active session")

// ErrSessionCompleted is returned when finalizing a session twice.
var ErrSessionCompleted = errors.New("session already finalized")
