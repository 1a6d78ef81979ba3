package metrics

import (
	"math/big"
	"testing"

	"flowkernel/core/events"
)

func TestEmitterHandlesKernelEvents(t *testing.T) {
	e := NewEmitter()

	// These must not panic regardless of event shape.
	e.Emit(events.PullExecuted{})
	e.Emit(events.Pulled{Amount: big.NewInt(5)})
	e.Emit(events.PolicySpend{Amount: big.NewInt(10)})
	e.Emit(events.RebalanceExecuted{Amount: big.NewInt(20)})
	e.Emit(events.MeshStep{Sent: big.NewInt(30)})
}
