package calculator

import (
	"errors"
	"math"
	"strings"

	"github.com/rotisserie/eris"
)

// WireField is one normalized form field ready for transmission.
type WireField struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Input holds the raw entries of one calculator form exactly as typed.
// There is no reset; a fresh Input replaces the old one.
type Input struct {
	calc   *Calculator
	values map[string]string
}

// NewInput returns an empty form for c.
func NewInput(c *Calculator) *Input {
	return &Input{calc: c, values: make(map[string]string, len(c.Fields))}
}

// Calculator returns the form's calculator.
func (in *Input) Calculator() *Calculator {
	return in.calc
}

// Set stores a raw entry for field. Unknown field names are rejected.
func (in *Input) Set(field, value string) error {
	if _, ok := in.calc.Field(field); !ok {
		return eris.Errorf("calculator: %s has no field %q", in.calc.Kind, field)
	}
	in.values[field] = value
	return nil
}

// Get returns the raw entry for field, or "" if unset.
func (in *Input) Get(field string) string {
	return in.values[field]
}

// Normalize returns the wire fields in form order. Percent fields are
// converted to fractions; all others pass through literally.
func (in *Input) Normalize() []WireField {
	out := make([]WireField, 0, len(in.calc.Fields))
	for _, f := range in.calc.Fields {
		raw := in.values[f.Name]
		v := raw
		if f.Convert != nil {
			v = f.Convert(raw)
		} else if f.Percent {
			v = PercentToFraction(raw)
		}
		out = append(out, WireField{Name: f.Name, Value: v})
	}
	return out
}

// Validate checks every entry against the form's UI domain. It is optional:
// the calculation service performs its own validation.
func (in *Input) Validate() error {
	var errs []error
	for _, f := range in.calc.Fields {
		if err := f.check(strings.TrimSpace(in.values[f.Name])); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Field) check(raw string) error {
	if raw == "" {
		return eris.Errorf("calculator: %s is required", f.Name)
	}
	v, ok := parseDecimal(raw)
	if !ok {
		return eris.Errorf("calculator: %s must be a number, got %q", f.Name, raw)
	}
	if f.Integer && v != math.Trunc(v) {
		return eris.Errorf("calculator: %s must be a whole number, got %q", f.Name, raw)
	}
	if v < f.Min {
		return eris.Errorf("calculator: %s must be at least %s", f.Name, FormatDecimal(f.Min))
	}
	if f.Max != nil && v > *f.Max {
		return eris.Errorf("calculator: %s must be at most %s", f.Name, FormatDecimal(*f.Max))
	}
	return nil
}
