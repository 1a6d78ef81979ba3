package common

import (
	"flowkernel/crypto"
)

// RequireCaller compares caller against expected, returning errOnMismatch if
// they differ. The flow components write their caller checks inline and do
// not call it.
func RequireCaller(caller, expected crypto.Address, errOnMismatch error) error {
	if caller != expected {
		return errOnMismatch
	}
	return nil
}

// PauseView is implemented by any component state that tracks a paused
// flag for an object it owns (a channel, a policy).
type PauseView interface {
	IsPaused() bool
}

// GuardPaused returns errIfPaused when v reports paused, nil otherwise.
func GuardPaused(v PauseView, errIfPaused error) error {
	if v != nil && v.IsPaused() {
		return errIfPaused
	}
	return nil
}

// RequireTrustedExecutor reports whether caller is present in the
// allowlist, returning errOnMismatch otherwise. No flow component calls it;
// ConsentRegistry checks executor trust through its Store's
// IsTrustedExecutor.
func RequireTrustedExecutor(allowlist map[crypto.Address]bool, caller crypto.Address, errOnMismatch error) error {
	if allowlist == nil || !allowlist[caller] {
		return errOnMismatch
	}
	return nil
}
