package validation

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cerebunit/internal/model"
	"cerebunit/internal/quantity"
	"cerebunit/internal/score"
	"cerebunit/internal/spiketrain"
)

// fakeCell fires at a scripted rate per run. Each run consumes the next entry
// of rates; the last entry repeats.
type fakeCell struct {
	name              string
	rates             []float64
	rateNoDendrites   float64
	ignoreRegions     bool
	runErr            error
	runs              int
	disconnected      bool
	props             model.SimulationProperties
	regions           model.CellRegions
	propsSetBeforeRun bool
}

func (c *fakeCell) Name() string { return c.name }

func (c *fakeCell) SetSimulationProperties(props model.SimulationProperties) error {
	c.props = props
	return nil
}

func (c *fakeCell) DisconnectAllDendrites() error {
	c.disconnected = true
	return nil
}

func (c *fakeCell) SetCellRegions(regions model.CellRegions) {
	if c.ignoreRegions {
		return
	}
	c.regions = regions
}

func (c *fakeCell) ProduceSpikeTrain(context.Context) (model.RunResult, error) {
	if c.runErr != nil {
		return model.RunResult{}, c.runErr
	}
	c.propsSetBeforeRun = c.props != (model.SimulationProperties{})
	rate := c.rates[min(c.runs, len(c.rates)-1)]
	if c.disconnected {
		rate = c.rateNoDendrites
	}
	c.runs++

	var trains []spiketrain.SpikeTrain
	for _, region := range c.regions.Names() {
		train, err := spiketrain.New(region, regularSpikes(rate, c.props.TStop), 0, c.props.TStop, quantity.Millisecond)
		if err != nil {
			return model.RunResult{}, err
		}
		trains = append(trains, train)
	}
	return model.NewRunResult(trains...), nil
}

func regularSpikes(rateHz, tStopMS float64) []float64 {
	n := int(math.Round(rateHz * tStopMS / 1000))
	times := make([]float64, n)
	for i := range times {
		times[i] = tStopMS * float64(i+1) / float64(n+1)
	}
	return times
}

// spikeOnly cannot disconnect dendrites.
type spikeOnly struct {
	fakeCell
}

func (s *spikeOnly) DisconnectAllDendrites() {}

func hz(v float64) quantity.Quantity {
	return quantity.New(v, quantity.Hertz)
}

func TestSpontaneousFiringMatchingRatePasses(t *testing.T) {
	test, err := NewSpontaneousFiringTest(hz(40), Config{})
	require.NoError(t, err)

	cell := &fakeCell{name: "purkinje", rates: []float64{40}}
	s, err := Judge[SpontaneousModel, Rates](context.Background(), test, cell)
	require.NoError(t, err)

	assert.Equal(t, score.Pass, s.Score)
	assert.Contains(t, s.Description, "40 Hz")
	assert.Contains(t, s.Description, "score is 0 (pass)")
	assert.Equal(t, model.DefaultSimulationProperties(), cell.props)
	assert.True(t, cell.propsSetBeforeRun)
	assert.Equal(t, []string{SomaRegion}, cell.regions.Names())
	assert.Equal(t, quantity.New(0, quantity.Millivolt), cell.regions[SomaRegion])
	assert.False(t, cell.disconnected)
}

func TestSpontaneousFiringMismatchFails(t *testing.T) {
	test, err := NewSpontaneousFiringTest(hz(40), Config{})
	require.NoError(t, err)

	s, err := test.JudgeModel(context.Background(), &fakeCell{name: "purkinje", rates: []float64{10}})
	require.NoError(t, err)
	assert.Equal(t, score.Fail, s.Score)
	assert.Contains(t, s.Description, "10 Hz")
	assert.Contains(t, s.Description, "40 Hz")
}

func TestSpontaneousFiringVerdictHook(t *testing.T) {
	var verdicts []Verdict
	test, err := NewSpontaneousFiringTest(hz(40), Config{
		OnVerdict: func(v Verdict) { verdicts = append(verdicts, v) },
	})
	require.NoError(t, err)

	_, err = test.JudgeModel(context.Background(), &fakeCell{name: "PC2015", rates: []float64{40}})
	require.NoError(t, err)
	_, err = test.JudgeModel(context.Background(), &fakeCell{name: "PC2015", rates: []float64{5}})
	require.NoError(t, err)

	require.Len(t, verdicts, 2)
	assert.True(t, verdicts[0].Passed)
	assert.Equal(t,
		"The model PC2015 passed the SpontaneousFiringTest. The mean firing rate of the model = 40 Hz and the validation data is 40 Hz",
		verdicts[0].Sentence)
	assert.False(t, verdicts[1].Passed)
	assert.Contains(t, verdicts[1].Sentence, "The model PC2015 failed the SpontaneousFiringTest")
	assert.Equal(t, "PC2015", verdicts[1].Model)
}

func TestProcessPredictionIsDeterministic(t *testing.T) {
	test, err := NewSpontaneousFiringTest(hz(40), Config{})
	require.NoError(t, err)

	cell := &fakeCell{name: "purkinje", rates: []float64{33}}
	result, err := test.GeneratePrediction(context.Background(), cell)
	require.NoError(t, err)

	first, err := test.ProcessPrediction(result)
	require.NoError(t, err)
	second, err := test.ProcessPrediction(result)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.InDelta(t, 33, first[SomaRegion].Hz.Magnitude, 1e-9)
	assert.Equal(t, quantity.PerMillisecond, first[SomaRegion].Raw.Unit)
	assert.Equal(t, 1, cell.runs)
}

func TestGeneratePredictionTwiceUsesLatestRun(t *testing.T) {
	test, err := NewSpontaneousFiringTest(hz(40), Config{})
	require.NoError(t, err)

	cell := &fakeCell{name: "purkinje", rates: []float64{40, 10}}
	first, err := test.GeneratePrediction(context.Background(), cell)
	require.NoError(t, err)
	second, err := test.GeneratePrediction(context.Background(), cell)
	require.NoError(t, err)

	rates, err := test.ProcessPrediction(second)
	require.NoError(t, err)
	assert.InDelta(t, 10, rates[SomaRegion].Hz.Magnitude, 1e-9)

	rates, err = test.ProcessPrediction(first)
	require.NoError(t, err)
	assert.InDelta(t, 40, rates[SomaRegion].Hz.Magnitude, 1e-9)
	assert.Equal(t, 2, cell.runs)
}

func TestMissingSomaRegionIsContractViolation(t *testing.T) {
	test, err := NewSpontaneousFiringTest(hz(40), Config{})
	require.NoError(t, err)

	cell := &fakeCell{name: "regionless", rates: []float64{40}, ignoreRegions: true}
	result, err := test.GeneratePrediction(context.Background(), cell)
	require.NoError(t, err)
	assert.Zero(t, result.Len())

	_, err = test.ProcessPrediction(result)
	require.ErrorIs(t, err, ErrContractViolation)

	_, err = test.JudgeModel(context.Background(), &fakeCell{name: "regionless", rates: []float64{40}, ignoreRegions: true})
	require.ErrorIs(t, err, ErrContractViolation)
}

func TestNoDendritesFiringPasses(t *testing.T) {
	test, err := NewNoDendritesTest(hz(40), Config{})
	require.NoError(t, err)

	cell := &fakeCell{name: "purkinje", rates: []float64{10}, rateNoDendrites: 40}
	s, err := Judge[NoDendritesModel, quantity.Quantity](context.Background(), test, cell)
	require.NoError(t, err)

	assert.True(t, cell.disconnected)
	assert.Equal(t, score.Pass, s.Score)
	assert.Contains(t, s.Description, "to be 40 Hz")
}

func TestNoDendritesSilentModelFails(t *testing.T) {
	test, err := NewNoDendritesTest(hz(40), Config{Comparator: score.FiringComparator{}})
	require.NoError(t, err)

	cell := &fakeCell{name: "purkinje", rates: []float64{40}, rateNoDendrites: 0}
	s, err := test.JudgeModel(context.Background(), cell)
	require.NoError(t, err)
	assert.True(t, cell.disconnected)
	assert.Equal(t, score.Fail, s.Score)
	assert.Contains(t, s.Description, "0 Hz")
}

func TestNoDendritesRequiresDisconnectCapability(t *testing.T) {
	test, err := NewNoDendritesTest(hz(40), Config{})
	require.NoError(t, err)

	cell := &spikeOnly{fakeCell{name: "intact-only", rates: []float64{40}}}
	_, err = test.JudgeModel(context.Background(), cell)
	require.ErrorIs(t, err, ErrContractViolation)
	assert.Zero(t, cell.runs)
}

func TestSimulationFailurePropagates(t *testing.T) {
	boom := errors.New("cvode did not converge")
	for _, runner := range []Runner{
		mustRunner(t, SpontaneousFiringTestName),
		mustRunner(t, NoDendritesTestName),
	} {
		_, err := runner.JudgeModel(context.Background(), &fakeCell{name: "broken", rates: []float64{40}, runErr: boom})
		require.ErrorIs(t, err, ErrSimulationFailure)
		require.ErrorIs(t, err, boom)
	}
}

func TestObservationMustBeFiringRate(t *testing.T) {
	_, err := NewSpontaneousFiringTest(quantity.New(-65, quantity.Millivolt), Config{})
	require.ErrorIs(t, err, ErrInvalidObservation)
	require.ErrorIs(t, err, quantity.ErrUnitMismatch)

	for name, obs := range map[string]quantity.Quantity{
		"negative":     hz(-1),
		"infinite":     quantity.MustParse("+Inf Hz"),
		"neg infinite": hz(math.Inf(-1)),
		"nan":          quantity.MustParse("NaN Hz"),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewNoDendritesTest(obs, Config{})
			require.ErrorIs(t, err, ErrInvalidObservation)
			_, err = NewSpontaneousFiringTest(obs, Config{})
			require.ErrorIs(t, err, ErrInvalidObservation)
		})
	}
}

func TestNonFiniteSimulationRejected(t *testing.T) {
	props := model.DefaultSimulationProperties()
	props.TStop = math.Inf(1)
	_, err := NewSpontaneousFiringTest(hz(40), Config{Simulation: props})
	require.Error(t, err)
}

func TestDebugLogDescribesProtocol(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	test, err := NewNoDendritesTest(hz(40), Config{Logger: logger})
	require.NoError(t, err)
	_, err = test.JudgeModel(context.Background(), &fakeCell{name: "purkinje", rates: []float64{40}})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "running model without dendrites")
	assert.Contains(t, out, `dt="0.025 ms"`)
	assert.Contains(t, out, `celsius="37 degC"`)
	assert.Contains(t, out, `tstop="1000 ms"`)
}

func TestCustomSimulationProperties(t *testing.T) {
	props := model.SimulationProperties{DT: 0.05, Celsius: 34, TStop: 2000, VInit: -70}
	test, err := NewSpontaneousFiringTest(hz(40), Config{Simulation: props})
	require.NoError(t, err)

	cell := &fakeCell{name: "purkinje", rates: []float64{40}}
	s, err := test.JudgeModel(context.Background(), cell)
	require.NoError(t, err)
	assert.Equal(t, props, cell.props)
	assert.True(t, s.Passed())

	_, err = NewSpontaneousFiringTest(hz(40), Config{Simulation: model.SimulationProperties{DT: 1}})
	require.Error(t, err)
}

func mustRunner(t *testing.T, name string) Runner {
	t.Helper()
	runner, err := NewRunner(name, hz(40), Config{})
	require.NoError(t, err)
	return runner
}
