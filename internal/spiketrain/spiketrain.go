// Package spiketrain holds recorded spike times for a cell region and the
// mean-firing-rate reduction applied to them.
package spiketrain

import (
	"errors"
	"fmt"
	"math"

	"cerebunit/internal/quantity"
)

var ErrInvalidTrain = errors.New("invalid spike train")

// SpikeTrain is an ordered sequence of spike times recorded from one region
// over the window [TStart, TStop]. Times share TimeUnit.
type SpikeTrain struct {
	Region   string        `json:"region"`
	Times    []float64     `json:"times"`
	TStart   float64       `json:"t_start"`
	TStop    float64       `json:"t_stop"`
	TimeUnit quantity.Unit `json:"time_unit"`
}

// New copies times so the returned train does not alias the caller's slice.
func New(region string, times []float64, tStart, tStop float64, unit quantity.Unit) (SpikeTrain, error) {
	train := SpikeTrain{
		Region:   region,
		Times:    append([]float64(nil), times...),
		TStart:   tStart,
		TStop:    tStop,
		TimeUnit: unit,
	}
	if err := train.Validate(); err != nil {
		return SpikeTrain{}, err
	}
	return train, nil
}

func (s SpikeTrain) Validate() error {
	if s.TimeUnit.Dimension != quantity.Time {
		return fmt.Errorf("%w: region %q time unit %q is not a time unit", ErrInvalidTrain, s.Region, s.TimeUnit.Symbol)
	}
	if math.IsNaN(s.TStart) || math.IsNaN(s.TStop) || s.TStop <= s.TStart {
		return fmt.Errorf("%w: region %q window [%g, %g]", ErrInvalidTrain, s.Region, s.TStart, s.TStop)
	}
	prev := math.Inf(-1)
	for i, t := range s.Times {
		if math.IsNaN(t) {
			return fmt.Errorf("%w: region %q spike %d is NaN", ErrInvalidTrain, s.Region, i)
		}
		if t < prev {
			return fmt.Errorf("%w: region %q spike %d at %g precedes %g", ErrInvalidTrain, s.Region, i, t, prev)
		}
		if t < s.TStart || t > s.TStop {
			return fmt.Errorf("%w: region %q spike %d at %g outside [%g, %g]", ErrInvalidTrain, s.Region, i, t, s.TStart, s.TStop)
		}
		prev = t
	}
	return nil
}

func (s SpikeTrain) Len() int {
	return len(s.Times)
}

func (s SpikeTrain) Duration() quantity.Quantity {
	return quantity.New(s.TStop-s.TStart, s.TimeUnit)
}

// MeanFiringRate is the spike count divided by the recording window, in the
// inverse of the train's time unit.
func MeanFiringRate(s SpikeTrain) (quantity.Quantity, error) {
	if err := s.Validate(); err != nil {
		return quantity.Quantity{}, err
	}
	unit, err := s.TimeUnit.Inverse()
	if err != nil {
		return quantity.Quantity{}, err
	}
	return quantity.New(float64(len(s.Times))/s.Duration().Magnitude, unit), nil
}

// Rate pairs the reducer's raw output with its hertz rescaling.
type Rate struct {
	Raw quantity.Quantity `json:"raw"`
	Hz  quantity.Quantity `json:"hz"`
}

func MeanFiringRateHz(s SpikeTrain) (Rate, error) {
	raw, err := MeanFiringRate(s)
	if err != nil {
		return Rate{}, err
	}
	hz, err := raw.Rescale(quantity.Hertz)
	if err != nil {
		return Rate{}, err
	}
	return Rate{Raw: raw, Hz: hz}, nil
}
