// Package replay provides a model that plays back recorded spike times
// instead of simulating a cell. Recordings are grouped by condition: the
// intact cell and the cell with its dendrites disconnected.
package replay

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"cerebunit/internal/model"
	"cerebunit/internal/quantity"
	"cerebunit/internal/spiketrain"
)

type Condition string

const (
	ConditionIntact      Condition = "intact"
	ConditionNoDendrites Condition = "no_dendrites"
)

func ParseCondition(s string) (Condition, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "", "intact":
		return ConditionIntact, nil
	case "no_dendrites", "nodendrites":
		return ConditionNoDendrites, nil
	default:
		return "", fmt.Errorf("unknown recording condition %q", s)
	}
}

// Recordings maps condition -> region -> spike times in ms.
type Recordings map[Condition]map[string][]float64

func (r Recordings) add(cond Condition, region string, t float64) {
	if r[cond] == nil {
		r[cond] = make(map[string][]float64)
	}
	r[cond][region] = append(r[cond][region], t)
}

func (r Recordings) regions() map[string]struct{} {
	out := make(map[string]struct{})
	for _, byRegion := range r {
		for region := range byRegion {
			out[region] = struct{}{}
		}
	}
	return out
}

// Model replays Recordings. It satisfies every model capability; a single
// Model must not be judged by two tests at once.
type Model struct {
	name       string
	recordings Recordings

	mu           sync.Mutex
	props        model.SimulationProperties
	regions      model.CellRegions
	disconnected bool
	runs         int
}

func New(name string, recordings Recordings) *Model {
	copied := make(Recordings, len(recordings))
	for cond, byRegion := range recordings {
		for region, times := range byRegion {
			for _, t := range times {
				copied.add(cond, region, t)
			}
		}
	}
	for _, byRegion := range copied {
		for _, times := range byRegion {
			sort.Float64s(times)
		}
	}
	return &Model{
		name:       name,
		recordings: copied,
		props:      model.DefaultSimulationProperties(),
	}
}

// Load reads a recording CSV with columns condition,region,time_ms. A header
// row is optional. When name is empty the file's base name is used.
func Load(name, path string) (*Model, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("replay csv path is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay csv %s: %w", path, err)
	}
	defer f.Close()

	if strings.TrimSpace(name) == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	m, err := Read(name, f)
	if err != nil {
		return nil, fmt.Errorf("replay csv %s: %w", path, err)
	}
	return m, nil
}

func Read(name string, r io.Reader) (*Model, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	recordings := make(Recordings)
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row+1, err)
		}
		row++

		if len(record) != 3 {
			return nil, fmt.Errorf("row %d: want 3 fields (condition,region,time_ms), got %d", row, len(record))
		}
		cond, condErr := ParseCondition(record[0])
		t, timeErr := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
		if row == 1 && condErr != nil && timeErr != nil {
			// header
			continue
		}
		if condErr != nil {
			return nil, fmt.Errorf("row %d: %w", row, condErr)
		}
		if timeErr != nil {
			return nil, fmt.Errorf("parse spike time row %d: %w", row, timeErr)
		}
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, fmt.Errorf("row %d: non-finite spike time %s", row, record[2])
		}
		region := strings.TrimSpace(record[1])
		if region == "" {
			return nil, fmt.Errorf("row %d: region is required", row)
		}
		if t < 0 {
			return nil, fmt.Errorf("row %d: negative spike time %g", row, t)
		}
		recordings.add(cond, region, t)
	}
	if len(recordings) == 0 {
		return nil, errors.New("no spike times recorded")
	}
	return New(name, recordings), nil
}

func (m *Model) Name() string {
	return m.name
}

func (m *Model) SetSimulationProperties(props model.SimulationProperties) error {
	if err := props.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.props = props
	return nil
}

func (m *Model) DisconnectAllDendrites() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disconnected = true
	return nil
}

// Reconnect restores the intact morphology.
func (m *Model) Reconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disconnected = false
}

func (m *Model) SetCellRegions(regions model.CellRegions) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regions = regions.Clone()
}

func (m *Model) Runs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs
}

// ProduceSpikeTrain returns the recorded spikes in [0, tstop] for every
// requested region, or every recorded region when none were requested.
// Regions never recorded are left out. A region recorded only for the intact
// cell is silent once the dendrites are disconnected.
func (m *Model) ProduceSpikeTrain(ctx context.Context) (model.RunResult, error) {
	if err := ctx.Err(); err != nil {
		return model.RunResult{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cond := ConditionIntact
	if m.disconnected {
		cond = ConditionNoDendrites
	}
	known := m.recordings.regions()

	var requested []string
	if len(m.regions) > 0 {
		requested = m.regions.Names()
	} else {
		for region := range known {
			requested = append(requested, region)
		}
		sort.Strings(requested)
	}

	trains := make([]spiketrain.SpikeTrain, 0, len(requested))
	for _, region := range requested {
		if _, ok := known[region]; !ok {
			continue
		}
		var times []float64
		for _, t := range m.recordings[cond][region] {
			if t > m.props.TStop {
				break
			}
			times = append(times, t)
		}
		train, err := spiketrain.New(region, times, 0, m.props.TStop, quantity.Millisecond)
		if err != nil {
			return model.RunResult{}, err
		}
		trains = append(trains, train)
	}
	m.runs++
	return model.NewRunResult(trains...), nil
}
