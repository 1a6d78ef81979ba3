package errors

import stderrors "errors"

// Limit-kind failures: a ceiling, budget, or cap was hit.
var (
	ErrAmountZero      = stderrors.New("flowkernel: amount must be greater than zero")
	ErrExceedsPerCall  = stderrors.New("flowkernel: amount exceeds the per-call ceiling")
	ErrExceedsEpoch    = stderrors.New("flowkernel: amount exceeds the remaining epoch budget")
	ErrExceedsAccrued  = stderrors.New("flowkernel: amount exceeds the accrued balance")
	ErrCapExceeded     = stderrors.New("flowkernel: amount exceeds the remaining cumulative cap")
	ErrReceiverForbidden = stderrors.New("flowkernel: receiver is not on the allowlist")
)
