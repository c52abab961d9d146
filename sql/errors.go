package sql

import "gopkg.in/src-d/go-errors.v1"

var (
	// ErrUnboundVariable is returned when a free variable reference
	// reaches the lowering stage unresolved.
	ErrUnboundVariable = errors.NewKind("unbound variable: %s")

	// ErrInternal is returned when an invariant the lowering stage
	// depends on was violated upstream. It signals a bug in a
	// collaborating stage, not a user error.
	ErrInternal = errors.NewKind("internal error: %s")

	// ErrUnsupportedJoinCondition is returned when a join condition could
	// not be decomposed into the left/right-tagged shape the merge engine
	// requires.
	ErrUnsupportedJoinCondition = errors.NewKind("unsupported join condition: %s")

	// ErrPlanningFailed wraps a failure surfaced from a nested planning
	// attempt, e.g. a retry with a different path-resolution strategy.
	ErrPlanningFailed = errors.NewKind("planning failed: %s")

	// ErrInvalidChildrenNumber is returned when the WithChildren method of
	// a node or expression is called with an invalid number of arguments.
	ErrInvalidChildrenNumber = errors.NewKind("%T: invalid children number, got %d, expected %d")

	// ErrInvalidChildType is returned when the WithChildren method of a
	// node or expression is called with an invalid child type. This error
	// is indicative of a bug.
	ErrInvalidChildType = errors.NewKind("%T: invalid child type, got %T, expected %T")
)
