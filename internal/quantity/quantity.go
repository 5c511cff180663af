package quantity

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
)

var (
	ErrUnitMismatch = errors.New("incompatible units")
	ErrUnknownUnit  = errors.New("unknown unit")
)

type Dimension string

const (
	Dimensionless Dimension = "dimensionless"
	Frequency     Dimension = "frequency"
	Time          Dimension = "time"
	Voltage       Dimension = "voltage"
	Temperature   Dimension = "temperature"
)

// Unit is a symbol within a dimension. Factor converts one of this unit into
// the dimension's base unit (Hz, s, V, degC).
type Unit struct {
	Symbol    string
	Dimension Dimension
	Factor    float64
}

var (
	Hertz          = Unit{Symbol: "Hz", Dimension: Frequency, Factor: 1}
	Kilohertz      = Unit{Symbol: "kHz", Dimension: Frequency, Factor: 1e3}
	PerSecond      = Unit{Symbol: "1/s", Dimension: Frequency, Factor: 1}
	PerMillisecond = Unit{Symbol: "1/ms", Dimension: Frequency, Factor: 1e3}
	Second         = Unit{Symbol: "s", Dimension: Time, Factor: 1}
	Millisecond    = Unit{Symbol: "ms", Dimension: Time, Factor: 1e-3}
	Volt           = Unit{Symbol: "V", Dimension: Voltage, Factor: 1}
	Millivolt      = Unit{Symbol: "mV", Dimension: Voltage, Factor: 1e-3}
	Celsius        = Unit{Symbol: "degC", Dimension: Temperature, Factor: 1}
	Unitless       = Unit{Symbol: "dimensionless", Dimension: Dimensionless, Factor: 1}
)

var unitRegistry = struct {
	mu sync.RWMutex
	m  map[string]Unit
}{
	m: make(map[string]Unit),
}

func init() {
	for _, u := range []Unit{
		Hertz, Kilohertz, PerSecond, PerMillisecond,
		Second, Millisecond, Volt, Millivolt, Celsius, Unitless,
	} {
		unitRegistry.m[u.Symbol] = u
	}
	unitRegistry.m[""] = Unitless
}

// RegisterUnit adds a unit symbol. Re-registering an existing symbol with a
// different definition is rejected.
func RegisterUnit(u Unit) error {
	if strings.TrimSpace(u.Symbol) == "" {
		return errors.New("unit symbol is required")
	}
	if u.Factor <= 0 || math.IsInf(u.Factor, 0) || math.IsNaN(u.Factor) {
		return fmt.Errorf("unit %s: invalid factor %v", u.Symbol, u.Factor)
	}

	unitRegistry.mu.Lock()
	defer unitRegistry.mu.Unlock()

	if existing, ok := unitRegistry.m[u.Symbol]; ok && existing != u {
		return fmt.Errorf("unit %s already registered", u.Symbol)
	}
	unitRegistry.m[u.Symbol] = u
	return nil
}

func ParseUnit(symbol string) (Unit, error) {
	symbol = strings.TrimSpace(symbol)
	unitRegistry.mu.RLock()
	u, ok := unitRegistry.m[symbol]
	unitRegistry.mu.RUnlock()
	if !ok {
		return Unit{}, fmt.Errorf("%w: %q", ErrUnknownUnit, symbol)
	}
	return u, nil
}

func ListUnits() []string {
	unitRegistry.mu.RLock()
	defer unitRegistry.mu.RUnlock()

	names := make([]string, 0, len(unitRegistry.m))
	for name := range unitRegistry.m {
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (u Unit) String() string {
	return u.Symbol
}

func (u Unit) MarshalText() ([]byte, error) {
	return []byte(u.Symbol), nil
}

func (u *Unit) UnmarshalText(text []byte) error {
	parsed, err := ParseUnit(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// Compatible reports whether values in u can be rescaled into other.
func (u Unit) Compatible(other Unit) bool {
	return u.Dimension == other.Dimension
}

// Inverse returns the reciprocal unit of a time unit, e.g. ms -> 1/ms.
func (u Unit) Inverse() (Unit, error) {
	if u.Dimension != Time {
		return Unit{}, fmt.Errorf("%w: cannot invert %s", ErrUnitMismatch, u.Symbol)
	}
	inv := Unit{Symbol: "1/" + u.Symbol, Dimension: Frequency, Factor: 1 / u.Factor}
	if known, err := ParseUnit(inv.Symbol); err == nil {
		return known, nil
	}
	return inv, nil
}

// Quantity is a magnitude tagged with a unit. Values are never mutated; every
// operation returns a new Quantity.
type Quantity struct {
	Magnitude float64
	Unit      Unit
}

func New(magnitude float64, unit Unit) Quantity {
	return Quantity{Magnitude: magnitude, Unit: unit}
}

// Rescale converts q into target. Temperature units share a zero point so
// only multiplicative conversion is supported.
func (q Quantity) Rescale(target Unit) (Quantity, error) {
	if !q.Unit.Compatible(target) {
		return Quantity{}, fmt.Errorf("%w: %s -> %s", ErrUnitMismatch, q.Unit.Symbol, target.Symbol)
	}
	if q.Unit == target {
		return q, nil
	}
	return Quantity{Magnitude: q.Magnitude * q.Unit.Factor / target.Factor, Unit: target}, nil
}

func (q Quantity) String() string {
	mag := strconv.FormatFloat(q.Magnitude, 'g', -1, 64)
	if q.Unit.Dimension == Dimensionless || q.Unit.Symbol == "" {
		return mag
	}
	return mag + " " + q.Unit.Symbol
}

func (q Quantity) IsZero() bool {
	return q == Quantity{}
}

// Parse reads "<magnitude> <unit>", e.g. "40 Hz" or "-65 mV". A bare number
// is dimensionless.
func Parse(s string) (Quantity, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 {
		return Quantity{}, errors.New("empty quantity")
	}
	if len(fields) > 2 {
		return Quantity{}, fmt.Errorf("malformed quantity %q", s)
	}
	mag, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Quantity{}, fmt.Errorf("parse quantity magnitude %q: %w", fields[0], err)
	}
	unit := Unitless
	if len(fields) == 2 {
		unit, err = ParseUnit(fields[1])
		if err != nil {
			return Quantity{}, err
		}
	}
	return Quantity{Magnitude: mag, Unit: unit}, nil
}

func MustParse(s string) Quantity {
	q, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return q
}

func (q Quantity) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

func (q *Quantity) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}
