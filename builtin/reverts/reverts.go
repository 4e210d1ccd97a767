// Copyright (c) 2026 The Vesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

// Revert is a named failure condition raised by a builtin contract.
// A call ending with a Revert discards all of its state effects.
type Revert struct {
	cond  string
	cause error
}

func cond(name string) *Revert {
	return &Revert{cond: name}
}

func (e *Revert) Error() string {
	if e.cause != nil {
		return e.cond + ": " + e.cause.Error()
	}
	return e.cond
}

func (e *Revert) Unwrap() error {
	return e.cause
}

// Is matches any Revert carrying the same condition name,
// so errors.Is works across WithCause wrapping.
func (e *Revert) Is(target error) bool {
	t, ok := target.(*Revert)
	return ok && t.cond == e.cond
}

// Cond returns the condition name.
func (e *Revert) Cond() string {
	return e.cond
}

// WithCause attaches a cause to the named condition.
func WithCause(r *Revert, cause error) error {
	return &Revert{cond: r.cond, cause: cause}
}

// Named failure conditions.
var (
	ErrInvalidAmount         = cond("invalid amount")
	ErrInsufficientBalance   = cond("insufficient balance")
	ErrInsufficientAllowance = cond("insufficient allowance")
	ErrUnauthorized          = cond("unauthorized")
	ErrPaused                = cond("paused")
	ErrPeriodNotFinished     = cond("period not finished")
	ErrRewardTooHigh         = cond("reward too high")
	ErrTransferFailed        = cond("transfer failed")
	ErrIndexOutOfRange       = cond("index out of range")
	ErrForbiddenToken        = cond("forbidden token")
	ErrInvalidDestination    = cond("invalid destination")
	ErrNothingToDistribute   = cond("nothing to distribute")
	ErrReentrancy            = cond("reentrant call")
)
