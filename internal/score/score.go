// Package score implements the binary pass/fail verdict of a validation test
// and the comparison policies that produce it.
package score

import (
	"fmt"
	"math"

	"cerebunit/internal/quantity"
)

const (
	Pass = 0
	Fail = 1
)

// BinaryScore is 0 when the prediction agrees with the observation and 1
// otherwise.
type BinaryScore struct {
	Score       int    `json:"score"`
	Description string `json:"description"`
}

func (s BinaryScore) Passed() bool {
	return s.Score == Pass
}

func (s BinaryScore) String() string {
	if s.Passed() {
		return "score is 0 (pass)"
	}
	return "score is 1 (fail)"
}

// WithDescription returns a copy of s carrying description.
func (s BinaryScore) WithDescription(description string) BinaryScore {
	s.Description = description
	return s
}

// Comparator decides whether a prediction is consistent with an observation.
// It returns Pass or Fail.
type Comparator interface {
	Compare(observation, prediction quantity.Quantity) (int, error)
}

type ComparatorFunc func(observation, prediction quantity.Quantity) (int, error)

func (f ComparatorFunc) Compare(observation, prediction quantity.Quantity) (int, error) {
	return f(observation, prediction)
}

// Compute runs cmp and wraps the outcome in a BinaryScore with no description.
func Compute(cmp Comparator, observation, prediction quantity.Quantity) (BinaryScore, error) {
	if cmp == nil {
		cmp = DefaultComparator()
	}
	outcome, err := cmp.Compare(observation, prediction)
	if err != nil {
		return BinaryScore{}, err
	}
	if outcome != Pass && outcome != Fail {
		return BinaryScore{}, fmt.Errorf("comparator returned %d, want 0 or 1", outcome)
	}
	return BinaryScore{Score: outcome}, nil
}

const DefaultRelativeTolerance = 0.05

func DefaultComparator() Comparator {
	return ToleranceComparator{Relative: DefaultRelativeTolerance}
}

// ToleranceComparator passes when |prediction - observation| is within
// max(Absolute, Relative*|observation|), measured in the observation's unit.
type ToleranceComparator struct {
	Relative float64 `json:"relative" yaml:"relative"`
	Absolute float64 `json:"absolute" yaml:"absolute"`
}

func (c ToleranceComparator) Compare(observation, prediction quantity.Quantity) (int, error) {
	if c.Relative < 0 || c.Absolute < 0 {
		return Fail, fmt.Errorf("tolerances must be non-negative: relative=%g absolute=%g", c.Relative, c.Absolute)
	}
	p, err := prediction.Rescale(observation.Unit)
	if err != nil {
		return Fail, err
	}
	limit := math.Max(c.Absolute, c.Relative*math.Abs(observation.Magnitude))
	if math.Abs(p.Magnitude-observation.Magnitude) <= limit {
		return Pass, nil
	}
	return Fail, nil
}

// FiringComparator treats the observation as "the cell fires": it passes when
// the prediction rate is above Threshold hertz. The observation only fixes the
// unit check.
type FiringComparator struct {
	Threshold float64 `json:"threshold" yaml:"threshold"`
}

func (c FiringComparator) Compare(observation, prediction quantity.Quantity) (int, error) {
	if _, err := observation.Rescale(quantity.Hertz); err != nil {
		return Fail, err
	}
	p, err := prediction.Rescale(quantity.Hertz)
	if err != nil {
		return Fail, err
	}
	if p.Magnitude > c.Threshold {
		return Pass, nil
	}
	return Fail, nil
}
