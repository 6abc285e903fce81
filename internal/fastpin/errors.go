package fastpin

import (
	"errors"
	"fmt"
)

// ErrNoContent is returned by Classify when the clipboard holds none of the
// supported formats. It marks a skipped capture, not a failure: callers on
// the dispatch path log it at debug and move on.
var ErrNoContent = errors.New("no recognizable clipboard content")

// ErrNotPreviewing is returned by commit/discard when no snapshot is pending.
var ErrNotPreviewing = errors.New("no clipboard content is being previewed")

// PersistenceError wraps a failed store operation. Op names the logical
// operation that failed ("insert item", "link tag", ...). A prior successful
// statement in the same logical commit is not rolled back; the error reports
// where the commit stopped.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// FileAccessError reports a missing or unreadable source file during cache
// population. The item's cache state is left as it was before the operation.
type FileAccessError struct {
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("file access: %s: %v", e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error { return e.Err }
