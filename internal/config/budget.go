package config

import "fmt"

// Budget holds the collection limits of a threshold sweep, scaled from one
// baseline physical error rate. It is passed explicitly; there is no global copy.
type Budget struct {
	BaselineErrorRate float64 `yaml:"baseline_error_rate"`
	BaselineMaxErrors int     `yaml:"baseline_max_errors"`
	BaselineMaxShots  int     `yaml:"baseline_max_shots"`
	MinShots          int     `yaml:"min_shots"`
}

func DefaultBudget() Budget {
	return Budget{
		BaselineErrorRate: 0.001,
		BaselineMaxErrors: 1000,
		BaselineMaxShots:  10_000_000,
		MinShots:          1_000_000,
	}
}

func (b Budget) Validate() error {
	if b.BaselineErrorRate <= 0 || b.BaselineErrorRate >= 1 {
		return fmt.Errorf("budget.baseline_error_rate must be in (0, 1), got %g", b.BaselineErrorRate)
	}
	if b.BaselineMaxErrors < 1 || b.BaselineMaxShots < 1 || b.MinShots < 0 {
		return fmt.Errorf("budget limits must be positive")
	}
	return nil
}

// MaxErrors scales the error budget quadratically with rate and never goes
// below the baseline. rate must be positive.
func (b Budget) MaxErrors(rate float64) int {
	scale := rate / b.BaselineErrorRate
	return max(b.BaselineMaxErrors, int(float64(b.BaselineMaxErrors)*scale*scale))
}

// MaxShots shrinks the shot budget inversely with rate, bounded below by
// max(MinShots, 100*BaselineMaxErrors). rate must be positive.
func (b Budget) MaxShots(rate float64) int {
	floor := max(b.MinShots, b.BaselineMaxErrors*100)
	return max(floor, int(float64(b.BaselineMaxShots)*(b.BaselineErrorRate/rate)))
}
