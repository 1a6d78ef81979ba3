package errors

import stderrors "errors"

// Input-kind failures: the caller-supplied data is malformed.
var (
	ErrBadAddress    = stderrors.New("flowkernel: bad address")
	ErrBadParameters = stderrors.New("flowkernel: bad parameters")
	ErrBadSignature  = stderrors.New("flowkernel: bad signature")
	ErrBadID         = stderrors.New("flowkernel: bad id")
)
