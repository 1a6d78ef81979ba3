package metrics

import (
	"strconv"

	"flowkernel/core/events"
)

// Emitter adapts events.Emitter, translating kernel events into the
// KernelMetrics singleton's counters/gauges. It never errors: a malformed
// attribute is simply skipped rather than dropping the whole event.
type Emitter struct {
	metrics *KernelMetrics
}

// NewEmitter constructs an events.Emitter backed by Kernel().
func NewEmitter() *Emitter {
	return &Emitter{metrics: Kernel()}
}

// Emit implements events.Emitter.
func (e *Emitter) Emit(ev events.Event) {
	payload, ok := ev.(events.Payload)
	if !ok {
		return
	}
	typed := payload.Event()
	switch typed.Type {
	case events.TypePullExecuted:
		e.metrics.PullExecuted("consent")
	case events.TypePulled:
		e.metrics.PullExecuted("channel")
		if amt, err := strconv.ParseFloat(typed.Attributes["amount"], 64); err == nil {
			e.metrics.ChannelAccrued(typed.Attributes["id"], amt)
		}
	case events.TypePolicySpend:
		if amt, err := strconv.ParseFloat(typed.Attributes["amount"], 64); err == nil {
			e.metrics.PolicySpendObserved(typed.Attributes["policy_id"], amt)
		}
	case events.TypeRebalanceExecuted:
		e.metrics.RebalanceExecuted()
		if amt, err := strconv.ParseFloat(typed.Attributes["amount"], 64); err == nil {
			e.metrics.IntentMoved(typed.Attributes["intent_hash"], amt)
		}
	case events.TypeMeshStep:
		if amt, err := strconv.ParseFloat(typed.Attributes["sent"], 64); err == nil {
			e.metrics.MeshStepAmount(typed.Attributes["dest"], amt)
		}
	}
}
