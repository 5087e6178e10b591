package grouping

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is the parent of every error caused by the caller's
	// arguments. No partitioning work has happened when it is returned.
	ErrConfiguration = errors.New("invalid grouping configuration")

	// ErrInvariant indicates broken bookkeeping inside the assignment loop.
	// It is a defect, never a recoverable condition.
	ErrInvariant = errors.New("grouping invariant violated")
)

var (
	// ErrInvalidGroupSize is returned when the minimum group size is not positive.
	ErrInvalidGroupSize = fmt.Errorf("%w: minimum group size must be positive", ErrConfiguration)

	// ErrRosterTooSmall is returned when the roster cannot fill a single group.
	ErrRosterTooSmall = fmt.Errorf("%w: roster is smaller than the minimum group size", ErrConfiguration)

	// ErrEmptyDepartment is returned when extracting from an exhausted department.
	ErrEmptyDepartment = fmt.Errorf("%w: department is empty", ErrInvariant)

	// ErrNoGroups is returned when a target group is requested from an empty list.
	ErrNoGroups = fmt.Errorf("%w: no groups to choose from", ErrInvariant)
)
