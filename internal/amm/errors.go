package amm

import "errors"

// Error kinds returned by the engine. All computation functions return one of
// these (possibly wrapped); nothing panics across the package boundary.
var (
	// ErrInvalidInput marks non-positive or out-of-range parameters. Rejected
	// before anything is computed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPoolPaused marks a governance-level block; recoverable once unpaused.
	ErrPoolPaused = errors.New("pool is paused")

	// ErrPoolDrained marks a result that would leave a reserve at zero. The
	// operation is rejected, never executed.
	ErrPoolDrained = errors.New("pool would be drained")

	// ErrSlippageExceeded marks a caller-declared minimum not being met.
	ErrSlippageExceeded = errors.New("slippage exceeded")

	// ErrInsufficientLP marks a burn amount exceeding the LP supply.
	ErrInsufficientLP = errors.New("insufficient lp supply")

	// ErrCorruptPoolState marks an internal invariant violation, such as a zero
	// reserve with nonzero LP supply. Fatal for the affected pool.
	ErrCorruptPoolState = errors.New("corrupt pool state")

	// ErrStaleSnapshot marks an out-of-order snapshot delivery. Dropped, not fatal.
	ErrStaleSnapshot = errors.New("stale snapshot")

	// ErrUnsupportedDatumVersion marks a datum version newer than the engine
	// supports. Rejected rather than partially interpreted.
	ErrUnsupportedDatumVersion = errors.New("unsupported datum version")
)
