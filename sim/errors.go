package sim

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidArgument reports a bad value at a population or API boundary.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvariantViolation reports an impossible agent state.
	ErrInvariantViolation = errors.New("invariant violation")
)

// mustFinite panics when v is NaN or infinite. A non-finite hunger or health
// means an earlier step computed garbage, and continuing would spread it.
func mustFinite(v float64, what string, id uint32) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		panic(fmt.Errorf("%w: agent %d %s is %v", ErrInvariantViolation, id, what, v))
	}
}
