package errors

import stderrors "errors"

// Integrity-kind failures are fatal: the call aborts with no state change.
var (
	ErrReentrancy         = stderrors.New("flowkernel: reentrant call rejected")
	ErrArithmeticOverflow = stderrors.New("flowkernel: arithmetic overflow")
)
