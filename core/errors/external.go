package errors

import stderrors "errors"

// External-kind failures: a downstream collaborator (token ledger, domain
// adapter) reported a failure.
var (
	ErrTransferFailed = stderrors.New("flowkernel: token transfer failed")
	ErrPullFailed     = stderrors.New("flowkernel: downstream pull failed")
)
