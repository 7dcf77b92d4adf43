package runstore

import (
	"errors"
	"fmt"
)

// ErrStale is returned by Update when the run's generation moved between the
// read and the write.
var ErrStale = errors.New("runstore: run changed concurrently")

// InvalidateError reports a partially or fully failed Invalidate. A failed
// bump leaves stale writers able to win the next SetWithGen.
type InvalidateError struct {
	ID      string
	BumpErr error
	DelErr  error
}

func (e *InvalidateError) Error() string {
	switch {
	case e.BumpErr != nil && e.DelErr != nil:
		return fmt.Sprintf("runstore: invalidate %q: gen bump and delete failed: bump=%v; delete=%v",
			e.ID, e.BumpErr, e.DelErr)
	case e.BumpErr != nil:
		return fmt.Sprintf("runstore: invalidate %q: gen bump failed: %v", e.ID, e.BumpErr)
	case e.DelErr != nil:
		return fmt.Sprintf("runstore: invalidate %q: delete failed: %v", e.ID, e.DelErr)
	default:
		return fmt.Sprintf("runstore: invalidate %q: unknown error", e.ID)
	}
}

func (e *InvalidateError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.BumpErr != nil {
		errs = append(errs, e.BumpErr)
	}
	if e.DelErr != nil {
		errs = append(errs, e.DelErr)
	}
	return errs
}
