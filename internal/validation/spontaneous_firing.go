package validation

import (
	"context"
	"fmt"

	"cerebunit/internal/model"
	"cerebunit/internal/quantity"
	"cerebunit/internal/score"
	"cerebunit/internal/spiketrain"
)

const SpontaneousFiringTestName = "spontaneous_firing"

// SpontaneousModel is what SpontaneousFiringTest needs from a model.
type SpontaneousModel interface {
	model.ConfigurableSimulation
	model.SpikeTrainProducer
}

// Rates holds the mean firing rate of every recorded region.
type Rates map[string]spiketrain.Rate

// SpontaneousFiringTest compares the soma's mean firing rate, with no
// stimulus, against the rate observed in the animal.
type SpontaneousFiringTest struct {
	observation quantity.Quantity
	regions     model.CellRegions
	cfg         Config
}

func NewSpontaneousFiringTest(observation quantity.Quantity, cfg Config) (*SpontaneousFiringTest, error) {
	if err := ValidateObservation(observation); err != nil {
		return nil, err
	}
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	return &SpontaneousFiringTest{
		observation: observation,
		regions:     model.CellRegions{SomaRegion: quantity.New(0, quantity.Millivolt)},
		cfg:         cfg,
	}, nil
}

func (t *SpontaneousFiringTest) Name() string {
	return SpontaneousFiringTestName
}

func (t *SpontaneousFiringTest) Observation() quantity.Quantity {
	return t.observation
}

func (t *SpontaneousFiringTest) Simulation() model.SimulationProperties {
	return t.cfg.Simulation
}

func (t *SpontaneousFiringTest) RequiredCapabilities() []model.Capability {
	return []model.Capability{
		model.CapabilityConfigurableSimulation,
		model.CapabilitySpikeTrainProducer,
	}
}

func (t *SpontaneousFiringTest) GeneratePrediction(ctx context.Context, m SpontaneousModel) (model.RunResult, error) {
	m.SetCellRegions(t.regions.Clone())
	if err := m.SetSimulationProperties(t.cfg.Simulation); err != nil {
		return model.RunResult{}, fmt.Errorf("set simulation properties on %s: %w", m.Name(), err)
	}
	t.cfg.Logger.Debug("running model",
		append([]any{"test", t.Name(), "model", m.Name(), "regions", t.regions.Names()}, protocolAttrs(t.cfg.Simulation)...)...)
	return runModel(ctx, m)
}

// ProcessPrediction reduces every requested region to its mean firing rate.
func (t *SpontaneousFiringTest) ProcessPrediction(result model.RunResult) (Rates, error) {
	rates := make(Rates, len(t.regions))
	for _, region := range t.regions.Names() {
		train, err := result.Train(region)
		if err != nil {
			return nil, err
		}
		rate, err := spiketrain.MeanFiringRateHz(train)
		if err != nil {
			return nil, fmt.Errorf("region %s: %w", region, err)
		}
		rates[region] = rate
	}
	return rates, nil
}

func (t *SpontaneousFiringTest) ComputeScore(observation quantity.Quantity, modelName string, result model.RunResult) (score.BinaryScore, error) {
	rates, err := t.ProcessPrediction(result)
	if err != nil {
		return score.BinaryScore{}, err
	}
	soma, ok := rates[SomaRegion]
	if !ok {
		return score.BinaryScore{}, fmt.Errorf("%w: no rate for region %q", ErrContractViolation, SomaRegion)
	}
	for _, region := range t.regions.Names() {
		t.cfg.Logger.Debug("mean firing rate", "model", modelName, "region", region, "rate", rates[region].Hz.String())
	}
	prediction := soma.Hz

	s, err := score.Compute(t.cfg.Comparator, observation, prediction)
	if err != nil {
		return score.BinaryScore{}, err
	}
	s = s.WithDescription(fmt.Sprintf(
		"The spontaneous firing test defined by the mean firing rate of the model = %s compared against the observed experimental data %s whose %s",
		prediction, observation, s))

	t.cfg.OnVerdict.emit(Verdict{
		Test:        t.Name(),
		Model:       modelName,
		Passed:      s.Passed(),
		Prediction:  prediction,
		Observation: observation,
		Sentence:    verdictSentence("SpontaneousFiringTest", modelName, s.Passed(), prediction, observation),
	})
	return s, nil
}

// JudgeModel checks m against the required capabilities before judging it.
func (t *SpontaneousFiringTest) JudgeModel(ctx context.Context, m model.Model) (score.BinaryScore, error) {
	if err := model.CheckCapabilities(m, t.RequiredCapabilities()...); err != nil {
		return score.BinaryScore{}, fmt.Errorf("%s: %w", t.Name(), err)
	}
	return Judge[SpontaneousModel, Rates](ctx, t, m.(SpontaneousModel))
}
