package model

import (
	"context"
	"fmt"
	"strings"
)

// Model is anything a validation test can be judged against.
type Model interface {
	Name() string
}

type ConfigurableSimulation interface {
	Model
	SetSimulationProperties(props SimulationProperties) error
}

type DendriteDisconnectable interface {
	Model
	// DisconnectAllDendrites detaches every dendritic compartment from the soma.
	DisconnectAllDendrites() error
}

type SpikeTrainProducer interface {
	Model
	// SetCellRegions selects the regions recorded by the next run.
	SetCellRegions(regions CellRegions)
	// ProduceSpikeTrain runs the configured simulation and returns one train
	// per recorded region. Each call returns a fresh result.
	ProduceSpikeTrain(ctx context.Context) (RunResult, error)
}

type Capability string

const (
	CapabilityConfigurableSimulation Capability = "configurable_simulation"
	CapabilityDendriteDisconnectable Capability = "dendrite_disconnectable"
	CapabilitySpikeTrainProducer     Capability = "spike_train_producer"
)

func (c Capability) satisfiedBy(m Model) bool {
	switch c {
	case CapabilityConfigurableSimulation:
		_, ok := m.(ConfigurableSimulation)
		return ok
	case CapabilityDendriteDisconnectable:
		_, ok := m.(DendriteDisconnectable)
		return ok
	case CapabilitySpikeTrainProducer:
		_, ok := m.(SpikeTrainProducer)
		return ok
	default:
		return false
	}
}

// CheckCapabilities reports every capability in caps that m lacks.
func CheckCapabilities(m Model, caps ...Capability) error {
	if m == nil {
		return fmt.Errorf("%w: model is nil", ErrContractViolation)
	}
	var missing []string
	for _, c := range caps {
		if !c.satisfiedBy(m) {
			missing = append(missing, string(c))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: model %s lacks %s", ErrContractViolation, m.Name(), strings.Join(missing, ", "))
	}
	return nil
}
