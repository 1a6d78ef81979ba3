package errors

import stderrors "errors"

// Temporal-kind failures: the call falls outside a validity window.
var (
	ErrTooSoon = stderrors.New("flowkernel: authorization not yet valid")
	ErrExpired = stderrors.New("flowkernel: authorization has expired")
)
