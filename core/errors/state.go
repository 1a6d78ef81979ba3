package errors

import stderrors "errors"

// State-kind failures: the targeted entry is in, or references, a state that
// makes the operation impossible.
var (
	ErrRevoked             = stderrors.New("flowkernel: revoked")
	ErrPaused              = stderrors.New("flowkernel: paused")
	ErrUnknownAuthorization = stderrors.New("flowkernel: unknown authorization")
	ErrUnknownIntent       = stderrors.New("flowkernel: unknown intent")
	ErrChannelExists       = stderrors.New("flowkernel: channel already exists")
	ErrNoActiveRoute       = stderrors.New("flowkernel: no active route available")
	ErrNoDestinationReceiver = stderrors.New("flowkernel: destination domain has no receiver configured")
	ErrChannelInactive     = stderrors.New("flowkernel: channel is inactive")
	ErrGrantorMismatch     = stderrors.New("flowkernel: grantor mismatch")
	ErrTokenMismatch       = stderrors.New("flowkernel: token mismatch")
)
