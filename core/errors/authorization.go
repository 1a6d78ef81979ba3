package errors

import stderrors "errors"

// Authorization-kind failures: the caller is not who the operation requires.
var (
	ErrNotGrantor         = stderrors.New("flowkernel: caller is not the grantor")
	ErrNotGrantee         = stderrors.New("flowkernel: caller is not the grantee")
	ErrNotController      = stderrors.New("flowkernel: caller is not the controller")
	ErrNotTrustedExecutor = stderrors.New("flowkernel: caller is not a trusted executor")
	ErrNotAuthorizedCaller = stderrors.New("flowkernel: caller is not authorized for this operation")
	ErrExecutorForbidden   = stderrors.New("flowkernel: executor is not approved for this domain")
)
