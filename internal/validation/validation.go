// Package validation runs Purkinje cell validation tests against models.
//
// A test drives a model through a fixed simulation protocol
// (GeneratePrediction), reduces the recorded spike trains to mean firing rates
// (ProcessPrediction), and compares the soma rate with an experimental
// observation (ComputeScore). Judge runs the three stages in order.
package validation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"cerebunit/internal/model"
	"cerebunit/internal/quantity"
	"cerebunit/internal/score"
)

// SomaRegion is the recording region every Purkinje test scores.
const SomaRegion = "vm_soma"

var (
	ErrContractViolation  = model.ErrContractViolation
	ErrSimulationFailure  = errors.New("simulation failure")
	ErrInvalidObservation = errors.New("invalid observation")
)

// Test is one validation scenario over models of type M whose processed
// prediction has type P.
type Test[M model.Model, P any] interface {
	Name() string
	Observation() quantity.Quantity
	RequiredCapabilities() []model.Capability
	GeneratePrediction(ctx context.Context, m M) (model.RunResult, error)
	ProcessPrediction(result model.RunResult) (P, error)
	ComputeScore(observation quantity.Quantity, modelName string, result model.RunResult) (score.BinaryScore, error)
}

// Judge runs the test against m. Any stage error aborts the judgment.
func Judge[M model.Model, P any](ctx context.Context, test Test[M, P], m M) (score.BinaryScore, error) {
	if err := model.CheckCapabilities(m, test.RequiredCapabilities()...); err != nil {
		return score.BinaryScore{}, fmt.Errorf("%s: %w", test.Name(), err)
	}
	result, err := test.GeneratePrediction(ctx, m)
	if err != nil {
		return score.BinaryScore{}, fmt.Errorf("%s: generate prediction: %w", test.Name(), err)
	}
	s, err := test.ComputeScore(test.Observation(), m.Name(), result)
	if err != nil {
		return score.BinaryScore{}, fmt.Errorf("%s: compute score: %w", test.Name(), err)
	}
	return s, nil
}

// Config is shared by the built-in tests. Zero values select the defaults.
type Config struct {
	Simulation model.SimulationProperties
	Comparator score.Comparator
	OnVerdict  VerdictHook
	Logger     *slog.Logger
}

func (c Config) withDefaults() (Config, error) {
	if c.Simulation == (model.SimulationProperties{}) {
		c.Simulation = model.DefaultSimulationProperties()
	}
	if err := c.Simulation.Validate(); err != nil {
		return Config{}, fmt.Errorf("simulation properties: %w", err)
	}
	if c.Comparator == nil {
		c.Comparator = score.DefaultComparator()
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)}))
	}
	return c, nil
}

// Verdict is the human-facing outcome of one judgment.
type Verdict struct {
	Test        string
	Model       string
	Passed      bool
	Prediction  quantity.Quantity
	Observation quantity.Quantity
	Sentence    string
}

// VerdictHook receives verdicts as they are produced. It is optional.
type VerdictHook func(Verdict)

func (h VerdictHook) emit(v Verdict) {
	if h != nil {
		h(v)
	}
}

// ValidateObservation accepts finite, non-negative firing rates only.
func ValidateObservation(observation quantity.Quantity) error {
	hz, err := observation.Rescale(quantity.Hertz)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidObservation, err)
	}
	if math.IsNaN(hz.Magnitude) || math.IsInf(hz.Magnitude, 0) {
		return fmt.Errorf("%w: non-finite firing rate %s", ErrInvalidObservation, observation)
	}
	if hz.Magnitude < 0 {
		return fmt.Errorf("%w: negative firing rate %s", ErrInvalidObservation, observation)
	}
	return nil
}

// protocolAttrs describes the simulation protocol for debug logs.
func protocolAttrs(p model.SimulationProperties) []any {
	return []any{
		"dt", p.StepSize().String(),
		"celsius", p.Temperature().String(),
		"tstop", p.Stop().String(),
		"v_init", p.InitialVoltage().String(),
	}
}

func runModel(ctx context.Context, m model.SpikeTrainProducer) (model.RunResult, error) {
	result, err := m.ProduceSpikeTrain(ctx)
	if err != nil {
		return model.RunResult{}, fmt.Errorf("%w: model %s: %w", ErrSimulationFailure, m.Name(), err)
	}
	return result, nil
}
