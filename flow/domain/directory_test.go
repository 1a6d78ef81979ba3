package domain

import "testing"
import "flowkernel/crypto"

func addr(b byte) crypto.Address {
	var a crypto.Address
	a[19] = b
	return a
}

func hashOf(b byte) crypto.Hash {
	var h crypto.Hash
	h[31] = b
	return h
}

func TestDirectoryRoutability(t *testing.T) {
	controller := addr(1)
	adapter := addr(2)
	destination := addr(3)
	executor := addr(4)
	id := hashOf(1)

	d := NewDirectory(controller)

	if d.IsApprovedExecutor(id, executor) {
		t.Fatal("unregistered domain should not be routable")
	}

	if err := d.SetDomain(controller, id, adapter, destination, true); err != nil {
		t.Fatalf("set_domain: %v", err)
	}
	if d.IsApprovedExecutor(id, executor) {
		t.Fatal("executor not yet approved")
	}

	if err := d.SetExecutorApproval(controller, id, executor, true); err != nil {
		t.Fatalf("set_executor_approval: %v", err)
	}
	if !d.IsApprovedExecutor(id, executor) {
		t.Fatal("executor should now be approved")
	}

	if err := d.SetDomain(controller, id, adapter, destination, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if d.IsApprovedExecutor(id, executor) {
		t.Fatal("inactive domain must not be routable even with approved executor")
	}
}

func TestDirectoryRequiresController(t *testing.T) {
	controller := addr(1)
	impostor := addr(9)
	d := NewDirectory(controller)

	if err := d.SetDomain(impostor, hashOf(1), addr(2), addr(3), true); err == nil {
		t.Fatal("expected not-controller error")
	}
}
