package common

import (
	"testing"

	"flowkernel/crypto"
)

func TestLatchRejectsReentry(t *testing.T) {
	var l Latch

	release, err := l.Enter()
	if err != nil {
		t.Fatalf("first Enter: %v", err)
	}

	if _, err := l.Enter(); err == nil {
		t.Fatal("expected second Enter to be rejected while latch held")
	}

	release()

	release2, err := l.Enter()
	if err != nil {
		t.Fatalf("Enter after release: %v", err)
	}
	release2()
}

func TestRequireCaller(t *testing.T) {
	a := crypto.Address{1}
	b := crypto.Address{2}

	if err := RequireCaller(a, a, errTest); err != nil {
		t.Fatalf("matching caller should pass: %v", err)
	}
	if err := RequireCaller(b, a, errTest); err != errTest {
		t.Fatalf("mismatched caller should return errTest, got %v", err)
	}
}

var errTest = testErr("mismatch")

type testErr string

func (e testErr) Error() string { return string(e) }
