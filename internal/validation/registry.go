package validation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"cerebunit/internal/model"
	"cerebunit/internal/quantity"
	"cerebunit/internal/score"
)

var (
	ErrTestExists   = errors.New("validation test already registered")
	ErrTestNotFound = errors.New("validation test not found")
)

// Runner is a constructed test that can be judged against any model; the
// model's capabilities are checked before anything runs.
type Runner interface {
	Name() string
	Observation() quantity.Quantity
	Simulation() model.SimulationProperties
	RequiredCapabilities() []model.Capability
	JudgeModel(ctx context.Context, m model.Model) (score.BinaryScore, error)
}

type Factory func(observation quantity.Quantity, cfg Config) (Runner, error)

type TestSpec struct {
	Name        string
	Description string
	Factory     Factory
}

var (
	_ Test[NoDendritesModel, quantity.Quantity] = (*NoDendritesTest)(nil)
	_ Test[SpontaneousModel, Rates]             = (*SpontaneousFiringTest)(nil)
	_ Runner                                    = (*NoDendritesTest)(nil)
	_ Runner                                    = (*SpontaneousFiringTest)(nil)
)

var testRegistry = struct {
	mu sync.RWMutex
	m  map[string]TestSpec
}{
	m: make(map[string]TestSpec),
}

func init() {
	initializeBuiltInTests()
}

func initializeBuiltInTests() {
	MustRegisterTest(TestSpec{
		Name:        SpontaneousFiringTestName,
		Description: "soma mean firing rate without stimulus against the observed spontaneous rate",
		Factory: func(observation quantity.Quantity, cfg Config) (Runner, error) {
			test, err := NewSpontaneousFiringTest(observation, cfg)
			if err != nil {
				return nil, err
			}
			return test, nil
		},
	})
	MustRegisterTest(TestSpec{
		Name:        NoDendritesTestName,
		Description: "soma firing with every dendrite disconnected and no injected current",
		Factory: func(observation quantity.Quantity, cfg Config) (Runner, error) {
			test, err := NewNoDendritesTest(observation, cfg)
			if err != nil {
				return nil, err
			}
			return test, nil
		},
	})
}

func RegisterTest(spec TestSpec) error {
	if spec.Name == "" {
		return errors.New("validation test name is required")
	}
	if spec.Factory == nil {
		return errors.New("validation test factory is required")
	}

	testRegistry.mu.Lock()
	defer testRegistry.mu.Unlock()

	if _, exists := testRegistry.m[spec.Name]; exists {
		return fmt.Errorf("%w: %s", ErrTestExists, spec.Name)
	}
	testRegistry.m[spec.Name] = spec
	return nil
}

func MustRegisterTest(spec TestSpec) {
	if err := RegisterTest(spec); err != nil {
		panic(err)
	}
}

// GetTest looks name up as given, then in its normalized form.
func GetTest(name string) (TestSpec, error) {
	testRegistry.mu.RLock()
	spec, ok := testRegistry.m[name]
	if !ok {
		spec, ok = testRegistry.m[NormalizeTestName(name)]
	}
	testRegistry.mu.RUnlock()
	if !ok {
		return TestSpec{}, fmt.Errorf("%w: %s", ErrTestNotFound, name)
	}
	return spec, nil
}

// NewRunner builds the named test for observation.
func NewRunner(name string, observation quantity.Quantity, cfg Config) (Runner, error) {
	spec, err := GetTest(name)
	if err != nil {
		return nil, err
	}
	return spec.Factory(observation, cfg)
}

func ListTests() []TestSpec {
	testRegistry.mu.RLock()
	defer testRegistry.mu.RUnlock()

	specs := make([]TestSpec, 0, len(testRegistry.m))
	for _, spec := range testRegistry.m {
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs
}

func resetTestRegistryForTests() {
	testRegistry.mu.Lock()
	testRegistry.m = make(map[string]TestSpec)
	testRegistry.mu.Unlock()
	initializeBuiltInTests()
}
