package mkgroups

import "errors"

// Sentinel errors for failures while building a permission context.
// All of them indicate mistakes in the module files rather than runtime
// conditions: a context that fails to build must never drive command
// emission, so each aborts the run before any output is produced.
//
// Use the Is*Err helper functions to check for specific errors and report
// them to the operator.
var (
	// ErrNameCase is returned when the same group is spelled with more than
	// one letter case across the merged input. Group identity is
	// case-insensitive, but the display spelling must be consistent
	// everywhere the group is mentioned.
	ErrNameCase = errors.New("mkgroups: inconsistent group name case")

	// ErrConflictingPermission is returned when a group's merged permission
	// list both asserts and negates the same node. Remove one of the two
	// tokens from the module files.
	ErrConflictingPermission = errors.New("mkgroups: conflicting permission")

	// ErrDuplicateWeight is returned when a group's weight is declared more
	// than once across the merged modules. Weights have no valid merge;
	// declare each group's weight in exactly one module.
	ErrDuplicateWeight = errors.New("mkgroups: duplicate group weight")

	// ErrCyclicInheritance is returned when the group parent graph contains
	// a cycle. Group inheritance must form a DAG.
	ErrCyclicInheritance = errors.New("mkgroups: cyclic group inheritance")

	// ErrMissingContext is returned when a requested context name has no
	// corresponding subdirectory of the modules directory.
	ErrMissingContext = errors.New("mkgroups: unknown context")
)

// IsNameCaseErr returns true if err is or wraps ErrNameCase.
func IsNameCaseErr(err error) bool {
	return errors.Is(err, ErrNameCase)
}

// IsConflictingPermissionErr returns true if err is or wraps ErrConflictingPermission.
func IsConflictingPermissionErr(err error) bool {
	return errors.Is(err, ErrConflictingPermission)
}

// IsDuplicateWeightErr returns true if err is or wraps ErrDuplicateWeight.
func IsDuplicateWeightErr(err error) bool {
	return errors.Is(err, ErrDuplicateWeight)
}

// IsCyclicInheritanceErr returns true if err is or wraps ErrCyclicInheritance.
func IsCyclicInheritanceErr(err error) bool {
	return errors.Is(err, ErrCyclicInheritance)
}

// IsMissingContextErr returns true if err is or wraps ErrMissingContext.
func IsMissingContextErr(err error) bool {
	return errors.Is(err, ErrMissingContext)
}
