package trigger

import "fmt"

// Action is the outcome of a trigger decision.
type Action string

const (
	// ActionSkip means the tick does nothing.
	ActionSkip Action = "skip"
	// ActionOptimize means the tick runs the optimizer.
	ActionOptimize Action = "optimize"
	// ActionAdapt means a candidate is applied.
	ActionAdapt Action = "adapt"
	// ActionReject means a candidate falls inside the hysteresis band.
	ActionReject Action = "reject"
)

// String returns the string representation of the action.
func (a Action) String() string {
	return string(a)
}

// Decision is the result of evaluating the policy.
type Decision struct {
	Action Action
	// Delta is previousCost - cost for acceptance decisions.
	Delta float64
	// Reason is a human-readable explanation of the decision.
	Reason string
}

// Policy holds the two thresholds a trigger decides with.
type Policy struct {
	optimizationThreshold float64
	adaptationThreshold   float64
}

// NewPolicy creates a Policy from cfg's thresholds.
func NewPolicy(cfg Config) Policy {
	return Policy{
		optimizationThreshold: cfg.OptimizationThreshold,
		adaptationThreshold:   cfg.AdaptationThreshold,
	}
}

// Evaluate decides whether a tick that sampled cost should optimize.
// A cost at or below the optimization threshold always skips.
func (p Policy) Evaluate(cost float64, enabled, adapting bool) Decision {
	if cost <= p.optimizationThreshold {
		return Decision{
			Action: ActionSkip,
			Reason: fmt.Sprintf("cost %.4f at or below optimization threshold %.4f", cost, p.optimizationThreshold),
		}
	}
	if !enabled {
		return Decision{Action: ActionSkip, Reason: "trigger disabled"}
	}
	if adapting {
		return Decision{Action: ActionSkip, Reason: "adaptation in progress"}
	}
	return Decision{
		Action: ActionOptimize,
		Reason: fmt.Sprintf("cost %.4f above optimization threshold %.4f", cost, p.optimizationThreshold),
	}
}

// Accept applies the hysteresis band: a candidate is applied only when it
// improves on previousCost by strictly more than the adaptation threshold.
func (p Policy) Accept(previousCost, cost float64) Decision {
	delta := previousCost - cost
	if delta > p.adaptationThreshold {
		return Decision{
			Action: ActionAdapt,
			Delta:  delta,
			Reason: fmt.Sprintf("improvement %.4f exceeds adaptation threshold %.4f", delta, p.adaptationThreshold),
		}
	}
	return Decision{
		Action: ActionReject,
		Delta:  delta,
		Reason: fmt.Sprintf("improvement %.4f within adaptation threshold %.4f", delta, p.adaptationThreshold),
	}
}
