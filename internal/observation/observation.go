// Package observation loads experimental reference values for validation
// tests from YAML or JSON files.
package observation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"cerebunit/internal/quantity"
	"cerebunit/internal/validation"
)

var ErrNotFound = errors.New("observation not found")

// Observation is the experimental value a test compares against.
type Observation struct {
	Test   string             `json:"test" yaml:"test"`
	Mean   quantity.Quantity  `json:"mean" yaml:"mean"`
	Std    *quantity.Quantity `json:"std,omitempty" yaml:"std,omitempty"`
	Cells  int                `json:"n,omitempty" yaml:"n,omitempty"`
	Source string             `json:"source,omitempty" yaml:"source,omitempty"`
}

type Dataset struct {
	Observations []Observation `json:"observations" yaml:"observations"`
}

func (o Observation) Validate() error {
	if strings.TrimSpace(o.Test) == "" {
		return errors.New("observation test name is required")
	}
	if err := validation.ValidateObservation(o.Mean); err != nil {
		return fmt.Errorf("%s mean: %w", o.Test, err)
	}
	if o.Std != nil {
		if !o.Std.Unit.Compatible(o.Mean.Unit) {
			return fmt.Errorf("%s std: %w: %s vs %s", o.Test, quantity.ErrUnitMismatch, o.Std.Unit, o.Mean.Unit)
		}
		if math.IsNaN(o.Std.Magnitude) || math.IsInf(o.Std.Magnitude, 0) || o.Std.Magnitude < 0 {
			return fmt.Errorf("%s std must be finite and non-negative, got %s", o.Test, o.Std)
		}
	}
	return nil
}

// Load reads a dataset file. JSON is used for .json files, YAML otherwise.
// A file holding a single observation object is accepted too.
func Load(path string) (Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("reading observation file: %w", err)
	}
	var ds Dataset
	if strings.EqualFold(filepath.Ext(path), ".json") {
		ds, err = decodeJSON(data)
	} else {
		ds, err = decodeYAML(data)
	}
	if err != nil {
		return Dataset{}, fmt.Errorf("parsing observation file %s: %w", path, err)
	}
	if err := ds.Validate(); err != nil {
		return Dataset{}, fmt.Errorf("observation file %s: %w", path, err)
	}
	return ds, nil
}

func decodeYAML(data []byte) (Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return Dataset{}, err
	}
	if len(ds.Observations) > 0 {
		return ds, nil
	}
	var single Observation
	if err := yaml.Unmarshal(data, &single); err != nil {
		return Dataset{}, err
	}
	return Dataset{Observations: []Observation{single}}, nil
}

func decodeJSON(data []byte) (Dataset, error) {
	var ds Dataset
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&ds); err != nil {
		return Dataset{}, err
	}
	if len(ds.Observations) > 0 {
		return ds, nil
	}
	var single Observation
	if err := json.Unmarshal(data, &single); err != nil {
		return Dataset{}, err
	}
	return Dataset{Observations: []Observation{single}}, nil
}

func (d Dataset) Validate() error {
	if len(d.Observations) == 0 {
		return errors.New("no observations")
	}
	seen := make(map[string]bool, len(d.Observations))
	for _, o := range d.Observations {
		if err := o.Validate(); err != nil {
			return err
		}
		if seen[o.Test] {
			return fmt.Errorf("duplicate observation for test %s", o.Test)
		}
		seen[o.Test] = true
	}
	return nil
}

// Find returns the observation for test. Names are compared in their
// normalized form, so test aliases match.
func (d Dataset) Find(test string) (Observation, error) {
	want := validation.NormalizeTestName(test)
	for _, o := range d.Observations {
		if o.Test == test || validation.NormalizeTestName(o.Test) == want {
			return o, nil
		}
	}
	return Observation{}, fmt.Errorf("%w: %s", ErrNotFound, test)
}
