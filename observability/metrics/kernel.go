package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// KernelMetrics exposes prometheus counters/gauges for the permissioned-pull
// kernel's seven components.
type KernelMetrics struct {
	pullsExecuted      *prometheus.CounterVec
	pullsRejected      *prometheus.CounterVec
	channelAccrued     *prometheus.GaugeVec
	policySpend        *prometheus.CounterVec
	intentMoved        *prometheus.CounterVec
	rebalanceExecuted  prometheus.Counter
	meshStepAmount     *prometheus.GaugeVec
	reentrancyRejected *prometheus.CounterVec
}

var (
	kernelOnce     sync.Once
	kernelRegistry *KernelMetrics
)

// Kernel returns the process-wide KernelMetrics singleton, registering its
// collectors with prometheus's default registry on first use.
func Kernel() *KernelMetrics {
	kernelOnce.Do(func() {
		kernelRegistry = &KernelMetrics{
			pullsExecuted: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "flowkernel_pulls_executed_total",
				Help: "Count of successful pulls by component (consent, channel).",
			}, []string{"component"}),
			pullsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "flowkernel_pulls_rejected_total",
				Help: "Count of rejected pulls by component and failure reason.",
			}, []string{"component", "reason"}),
			channelAccrued: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "flowkernel_channel_accrued",
				Help: "Current accrued-but-unclaimed balance per flow channel.",
			}, []string{"channel_id"}),
			policySpend: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "flowkernel_policy_spend_total",
				Help: "Cumulative amount consumed against epoch budgets by policy.",
			}, []string{"policy_id"}),
			intentMoved: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "flowkernel_intent_moved_total",
				Help: "Cumulative amount moved against a FlowIntent's max_total.",
			}, []string{"intent_hash"}),
			rebalanceExecuted: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "flowkernel_rebalance_executed_total",
				Help: "Count of successful cross-domain rebalances.",
			}),
			meshStepAmount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "flowkernel_mesh_step_amount",
				Help: "Amount moved by the most recent mesh rebalance step, per destination.",
			}, []string{"destination"}),
			reentrancyRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "flowkernel_reentrancy_rejected_total",
				Help: "Count of calls rejected by a component's non-reentrancy latch.",
			}, []string{"component"}),
		}
		prometheus.MustRegister(
			kernelRegistry.pullsExecuted,
			kernelRegistry.pullsRejected,
			kernelRegistry.channelAccrued,
			kernelRegistry.policySpend,
			kernelRegistry.intentMoved,
			kernelRegistry.rebalanceExecuted,
			kernelRegistry.meshStepAmount,
			kernelRegistry.reentrancyRejected,
		)
	})
	return kernelRegistry
}

// PullExecuted records a successful pull against component.
func (m *KernelMetrics) PullExecuted(component string) {
	m.pullsExecuted.WithLabelValues(component).Inc()
}

// PullRejected records a rejected pull with its failure reason.
func (m *KernelMetrics) PullRejected(component, reason string) {
	m.pullsRejected.WithLabelValues(component, reason).Inc()
}

// ChannelAccrued sets the current accrued balance gauge for a channel.
func (m *KernelMetrics) ChannelAccrued(channelID string, amount float64) {
	m.channelAccrued.WithLabelValues(channelID).Set(amount)
}

// PolicySpendObserved adds amount to the cumulative spend counter for policyID.
func (m *KernelMetrics) PolicySpendObserved(policyID string, amount float64) {
	m.policySpend.WithLabelValues(policyID).Add(amount)
}

// IntentMoved adds amount to the cumulative moved counter for intentHash.
func (m *KernelMetrics) IntentMoved(intentHash string, amount float64) {
	m.intentMoved.WithLabelValues(intentHash).Add(amount)
}

// RebalanceExecuted increments the rebalance-success counter.
func (m *KernelMetrics) RebalanceExecuted() {
	m.rebalanceExecuted.Inc()
}

// MeshStepAmount records the most recent step amount routed toward destination.
func (m *KernelMetrics) MeshStepAmount(destination string, amount float64) {
	m.meshStepAmount.WithLabelValues(destination).Set(amount)
}

// ReentrancyRejected records a non-reentrancy latch rejection for component.
func (m *KernelMetrics) ReentrancyRejected(component string) {
	m.reentrancyRejected.WithLabelValues(component).Inc()
}
