package model

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"cerebunit/internal/quantity"
	"cerebunit/internal/spiketrain"
)

var ErrContractViolation = errors.New("model contract violation")

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// SimulationProperties is the protocol a test applies before running a model.
// DT and TStop are in ms, Celsius in degC, VInit in mV.
type SimulationProperties struct {
	DT      float64 `json:"dt" yaml:"dt"`
	Celsius float64 `json:"celsius" yaml:"celsius"`
	TStop   float64 `json:"tstop" yaml:"tstop"`
	VInit   float64 `json:"v_init" yaml:"v_init"`
}

func DefaultSimulationProperties() SimulationProperties {
	return SimulationProperties{
		DT:      0.025,
		Celsius: 37,
		TStop:   1000,
		VInit:   -65,
	}
}

func (p SimulationProperties) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{{"dt", p.DT}, {"celsius", p.Celsius}, {"tstop", p.TStop}, {"v_init", p.VInit}}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%s must be finite, got %g", f.name, f.value)
		}
	}
	if p.DT <= 0 {
		return fmt.Errorf("dt must be > 0, got %g", p.DT)
	}
	if p.TStop <= 0 {
		return fmt.Errorf("tstop must be > 0, got %g", p.TStop)
	}
	if p.DT >= p.TStop {
		return fmt.Errorf("dt (%g) must be smaller than tstop (%g)", p.DT, p.TStop)
	}
	return nil
}

func (p SimulationProperties) StepSize() quantity.Quantity {
	return quantity.New(p.DT, quantity.Millisecond)
}

func (p SimulationProperties) Temperature() quantity.Quantity {
	return quantity.New(p.Celsius, quantity.Celsius)
}

func (p SimulationProperties) Stop() quantity.Quantity {
	return quantity.New(p.TStop, quantity.Millisecond)
}

func (p SimulationProperties) InitialVoltage() quantity.Quantity {
	return quantity.New(p.VInit, quantity.Millivolt)
}

// CellRegions maps a recording region to its spike-detection threshold.
type CellRegions map[string]quantity.Quantity

func (r CellRegions) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r CellRegions) Clone() CellRegions {
	out := make(CellRegions, len(r))
	for name, threshold := range r {
		out[name] = threshold
	}
	return out
}

// RunResult is the set of spike trains produced by one model run. It is
// returned by value and never modified by the tests that read it.
type RunResult struct {
	trains map[string]spiketrain.SpikeTrain
}

func NewRunResult(trains ...spiketrain.SpikeTrain) RunResult {
	m := make(map[string]spiketrain.SpikeTrain, len(trains))
	for _, train := range trains {
		m[train.Region] = train
	}
	return RunResult{trains: m}
}

// Train returns the spike train for region. A missing region means the model
// did not honour the regions it was asked to record.
func (r RunResult) Train(region string) (spiketrain.SpikeTrain, error) {
	train, ok := r.trains[region]
	if !ok {
		return spiketrain.SpikeTrain{}, fmt.Errorf("%w: no spike train for region %q (have %v)", ErrContractViolation, region, r.Regions())
	}
	return train, nil
}

func (r RunResult) Regions() []string {
	names := make([]string, 0, len(r.trains))
	for name := range r.trains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r RunResult) Len() int {
	return len(r.trains)
}

// ScoreRecord is a persisted judgment.
type ScoreRecord struct {
	VersionedRecord
	ID           string               `json:"id"`
	Test         string               `json:"test"`
	Model        string               `json:"model"`
	Score        int                  `json:"score"`
	Description  string               `json:"description"`
	PredictionHz float64              `json:"prediction_hz"`
	Observation  string               `json:"observation"`
	Simulation   SimulationProperties `json:"simulation"`
	CreatedAtUTC time.Time            `json:"created_at_utc"`
}
