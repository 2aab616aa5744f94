package pipeline

import "fmt"

// Step names a pipeline stage. Steps run in declaration order.
type Step int

const (
	StepSettings Step = iota
	StepAssets
	StepStandardize
	StepSplits
	StepAssert
	StepBalances
	StepSeparate
	StepDone
)

var stepNames = [...]string{
	StepSettings:    "settings",
	StepAssets:      "assets",
	StepStandardize: "standardize",
	StepSplits:      "splits",
	StepAssert:      "assert",
	StepBalances:    "balances",
	StepSeparate:    "separate",
	StepDone:        "done",
}

func (s Step) String() string {
	if s < 0 || int(s) >= len(stepNames) {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return stepNames[s]
}

// ParseStep is the inverse of Step.String.
func ParseStep(name string) (Step, error) {
	for i, n := range stepNames {
		if n == name {
			return Step(i), nil
		}
	}
	return 0, fmt.Errorf("unknown step %q", name)
}

// Next returns the step that follows s.
func (s Step) Next() Step {
	if s >= StepDone {
		return StepDone
	}
	return s + 1
}
