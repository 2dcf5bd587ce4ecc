package engine

import (
	"errors"
	"fmt"
	"io"
	"math"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownParam = errors.New("unknown parameter")
	ErrParamRange   = errors.New("parameter out of range")
)

// Params are the search coefficients that can be changed at runtime.
type Params struct {
	// UCTC is the exploration constant in the UCT formula.
	UCTC float64 `yaml:"uct_c"`
	// EvalScale is the centipawn scale of the logistic mapping from
	// material evaluation to a result in (-1, 1).
	EvalScale float64 `yaml:"eval_scale"`
}

// Tunable describes one named coefficient with its bounds.
type Tunable struct {
	Name  string
	Value float64
	Min   float64
	Max   float64
	Step  float64
}

// CentiValue returns the value in the integer hundredths used by setoption.
func (t Tunable) CentiValue() int64 { return int64(math.Round(t.Value * 100)) }
func (t Tunable) CentiMin() int64   { return int64(math.Round(t.Min * 100)) }
func (t Tunable) CentiMax() int64   { return int64(math.Round(t.Max * 100)) }

const (
	ParamUCTC      = "UCT_C"
	ParamEvalScale = "EVAL_SCALE"
)

// DefaultParams returns the tuned defaults.
func DefaultParams() Params {
	return Params{UCTC: 1.5, EvalScale: 200}
}

// Tunables lists the coefficients in a stable order.
func (p *Params) Tunables() []Tunable {
	return []Tunable{
		{Name: ParamUCTC, Value: p.UCTC, Min: 1.1, Max: 4.0, Step: 0.1},
		{Name: ParamEvalScale, Value: p.EvalScale, Min: 100, Max: 800, Step: 50},
	}
}

func (p *Params) field(name string) (*float64, Tunable, error) {
	for _, t := range p.Tunables() {
		if t.Name != name {
			continue
		}
		switch name {
		case ParamUCTC:
			return &p.UCTC, t, nil
		case ParamEvalScale:
			return &p.EvalScale, t, nil
		}
	}
	return nil, Tunable{}, fmt.Errorf("%q: %w", name, ErrUnknownParam)
}

// Set assigns raw/100 to the named coefficient. Values outside the
// coefficient's bounds are rejected and leave p unchanged.
func (p *Params) Set(name string, raw int64) error {
	return p.SetFloat(name, float64(raw)/100)
}

// SetFloat assigns v to the named coefficient.
func (p *Params) SetFloat(name string, v float64) error {
	dst, t, err := p.field(name)
	if err != nil {
		return err
	}
	if v < t.Min || v > t.Max || math.IsNaN(v) {
		return fmt.Errorf("%s=%g not in [%g, %g]: %w", name, v, t.Min, t.Max, ErrParamRange)
	}
	*dst = v
	return nil
}

// Validate checks every coefficient against its bounds.
func (p Params) Validate() error {
	for _, t := range p.Tunables() {
		if t.Value < t.Min || t.Value > t.Max || math.IsNaN(t.Value) {
			return fmt.Errorf("%s=%g not in [%g, %g]: %w", t.Name, t.Value, t.Min, t.Max, ErrParamRange)
		}
	}
	return nil
}

// WriteYAML dumps the parameters.
func (p Params) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return err
	}
	return enc.Close()
}

// ReadParamsYAML loads parameters, starting from the defaults for missing keys.
func ReadParamsYAML(r io.Reader) (Params, error) {
	p := DefaultParams()
	if err := yaml.NewDecoder(r).Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Params{}, fmt.Errorf("decoding params: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}
