package validation

import (
	"context"
	"fmt"

	"cerebunit/internal/model"
	"cerebunit/internal/quantity"
	"cerebunit/internal/score"
	"cerebunit/internal/spiketrain"
)

const NoDendritesTestName = "no_dendrites"

// NoDendritesModel is what NoDendritesTest needs from a model.
type NoDendritesModel interface {
	model.ConfigurableSimulation
	model.DendriteDisconnectable
	model.SpikeTrainProducer
}

// NoDendritesTest checks that the soma keeps firing, without injected
// current, once every dendrite is disconnected.
type NoDendritesTest struct {
	observation quantity.Quantity
	cfg         Config
}

func NewNoDendritesTest(observation quantity.Quantity, cfg Config) (*NoDendritesTest, error) {
	if err := ValidateObservation(observation); err != nil {
		return nil, err
	}
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	return &NoDendritesTest{observation: observation, cfg: cfg}, nil
}

func (t *NoDendritesTest) Name() string {
	return NoDendritesTestName
}

func (t *NoDendritesTest) Observation() quantity.Quantity {
	return t.observation
}

func (t *NoDendritesTest) Simulation() model.SimulationProperties {
	return t.cfg.Simulation
}

func (t *NoDendritesTest) RequiredCapabilities() []model.Capability {
	return []model.Capability{
		model.CapabilityConfigurableSimulation,
		model.CapabilityDendriteDisconnectable,
		model.CapabilitySpikeTrainProducer,
	}
}

func (t *NoDendritesTest) GeneratePrediction(ctx context.Context, m NoDendritesModel) (model.RunResult, error) {
	if err := m.DisconnectAllDendrites(); err != nil {
		return model.RunResult{}, fmt.Errorf("%w: disconnect dendrites of %s: %w", ErrSimulationFailure, m.Name(), err)
	}
	if err := m.SetSimulationProperties(t.cfg.Simulation); err != nil {
		return model.RunResult{}, fmt.Errorf("set simulation properties on %s: %w", m.Name(), err)
	}
	m.SetCellRegions(model.CellRegions{SomaRegion: quantity.New(0, quantity.Millivolt)})
	t.cfg.Logger.Debug("running model without dendrites",
		append([]any{"test", t.Name(), "model", m.Name()}, protocolAttrs(t.cfg.Simulation)...)...)
	return runModel(ctx, m)
}

// ProcessPrediction returns the soma mean firing rate in Hz.
func (t *NoDendritesTest) ProcessPrediction(result model.RunResult) (quantity.Quantity, error) {
	train, err := result.Train(SomaRegion)
	if err != nil {
		return quantity.Quantity{}, err
	}
	rate, err := spiketrain.MeanFiringRateHz(train)
	if err != nil {
		return quantity.Quantity{}, err
	}
	return rate.Hz, nil
}

func (t *NoDendritesTest) ComputeScore(observation quantity.Quantity, modelName string, result model.RunResult) (score.BinaryScore, error) {
	prediction, err := t.ProcessPrediction(result)
	if err != nil {
		return score.BinaryScore{}, err
	}
	s, err := score.Compute(t.cfg.Comparator, observation, prediction)
	if err != nil {
		return score.BinaryScore{}, err
	}
	s = s.WithDescription(fmt.Sprintf(
		"The no dendrites attached to soma, soma firing test results in the prediction by the model to be %s which means that the %s",
		prediction, s))

	t.cfg.OnVerdict.emit(Verdict{
		Test:        t.Name(),
		Model:       modelName,
		Passed:      s.Passed(),
		Prediction:  prediction,
		Observation: observation,
		Sentence:    verdictSentence("NoDendritesTest", modelName, s.Passed(), prediction, observation),
	})
	return s, nil
}

// JudgeModel checks m against the required capabilities before judging it.
func (t *NoDendritesTest) JudgeModel(ctx context.Context, m model.Model) (score.BinaryScore, error) {
	if err := model.CheckCapabilities(m, t.RequiredCapabilities()...); err != nil {
		return score.BinaryScore{}, fmt.Errorf("%s: %w", t.Name(), err)
	}
	return Judge[NoDendritesModel, quantity.Quantity](ctx, t, m.(NoDendritesModel))
}

func verdictSentence(testName, modelName string, passed bool, prediction, observation quantity.Quantity) string {
	outcome := "failed"
	if passed {
		outcome = "passed"
	}
	return fmt.Sprintf("The model %s %s the %s. The mean firing rate of the model = %s and the validation data is %s",
		modelName, outcome, testName, prediction, observation)
}
