package language

import (
	"fmt"
	"strconv"
)

// ReadyPolicy decides whether a discovered, non-default language is shown in the UI.
// Completeness is a percentage in [0, 100].
type ReadyPolicy interface {
	Ready(completeness float64) bool
	String() string
}

const (
	PolicyAlways    = "always"
	PolicyThreshold = "threshold"
)

// AlwaysReady marks every discovered language as ready.
type AlwaysReady struct{}

func (AlwaysReady) Ready(float64) bool { return true }
func (AlwaysReady) String() string     { return PolicyAlways }

// Threshold marks a language ready once its completeness reaches Percent.
type Threshold struct {
	Percent float64
}

func (t Threshold) Ready(completeness float64) bool {
	return completeness >= t.Percent
}

func (t Threshold) String() string {
	return PolicyThreshold + ":" + strconv.FormatFloat(t.Percent, 'f', -1, 64)
}

// ParsePolicy builds a policy from its configured name.
func ParsePolicy(name string, percent float64) (ReadyPolicy, error) {
	switch name {
	case "", PolicyAlways:
		return AlwaysReady{}, nil
	case PolicyThreshold:
		if percent < 0 || percent > 100 {
			return nil, fmt.Errorf("threshold %v is outside [0, 100]", percent)
		}
		return Threshold{Percent: percent}, nil
	}
	return nil, fmt.Errorf("unknown ready policy %q", name)
}
