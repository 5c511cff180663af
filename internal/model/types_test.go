package model

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cerebunit/internal/quantity"
	"cerebunit/internal/spiketrain"
)

type namedOnly struct{}

func (namedOnly) Name() string { return "named-only" }

type producerOnly struct{ namedOnly }

func (producerOnly) SetCellRegions(CellRegions) {}

func (producerOnly) ProduceSpikeTrain(context.Context) (RunResult, error) {
	return RunResult{}, nil
}

func TestDefaultSimulationProperties(t *testing.T) {
	props := DefaultSimulationProperties()
	assert.Equal(t, 0.025, props.DT)
	assert.Equal(t, 37.0, props.Celsius)
	assert.Equal(t, 1000.0, props.TStop)
	assert.Equal(t, -65.0, props.VInit)
	require.NoError(t, props.Validate())

	assert.Equal(t, quantity.New(-65, quantity.Millivolt), props.InitialVoltage())
	assert.Equal(t, quantity.New(1000, quantity.Millisecond), props.Stop())
	assert.Equal(t, quantity.New(0.025, quantity.Millisecond), props.StepSize())
	assert.Equal(t, quantity.New(37, quantity.Celsius), props.Temperature())
}

func TestSimulationPropertiesValidate(t *testing.T) {
	for _, props := range []SimulationProperties{
		{DT: 0, TStop: 1000},
		{DT: 0.025, TStop: 0},
		{DT: 10, TStop: 5},
		{DT: 0.025, TStop: math.Inf(1)},
		{DT: math.NaN(), TStop: 1000},
		{DT: 0.025, TStop: 1000, Celsius: math.NaN()},
		{DT: 0.025, TStop: 1000, VInit: math.Inf(-1)},
	} {
		require.Error(t, props.Validate(), "%+v", props)
	}
}

func TestRunResultTrainMissingRegion(t *testing.T) {
	train, err := spiketrain.New("vm_NOR3", []float64{1}, 0, 10, quantity.Millisecond)
	require.NoError(t, err)

	result := NewRunResult(train)
	_, err = result.Train("vm_soma")
	require.ErrorIs(t, err, ErrContractViolation)

	got, err := result.Train("vm_NOR3")
	require.NoError(t, err)
	assert.Equal(t, train, got)
	assert.Equal(t, []string{"vm_NOR3"}, result.Regions())
}

func TestEmptyRunResult(t *testing.T) {
	var result RunResult
	assert.Zero(t, result.Len())
	_, err := result.Train("vm_soma")
	require.ErrorIs(t, err, ErrContractViolation)
}

func TestCheckCapabilities(t *testing.T) {
	require.NoError(t, CheckCapabilities(producerOnly{}, CapabilitySpikeTrainProducer))

	err := CheckCapabilities(producerOnly{}, CapabilitySpikeTrainProducer, CapabilityDendriteDisconnectable)
	require.ErrorIs(t, err, ErrContractViolation)
	assert.Contains(t, err.Error(), string(CapabilityDendriteDisconnectable))

	err = CheckCapabilities(namedOnly{}, CapabilityConfigurableSimulation)
	require.ErrorIs(t, err, ErrContractViolation)

	require.ErrorIs(t, CheckCapabilities(nil), ErrContractViolation)
}

func TestCellRegionsCloneAndNames(t *testing.T) {
	regions := CellRegions{
		"vm_soma": quantity.New(0, quantity.Millivolt),
		"vm_NOR3": quantity.New(0, quantity.Millivolt),
	}
	clone := regions.Clone()
	delete(clone, "vm_NOR3")

	assert.Equal(t, []string{"vm_NOR3", "vm_soma"}, regions.Names())
	assert.Equal(t, []string{"vm_soma"}, clone.Names())
}
