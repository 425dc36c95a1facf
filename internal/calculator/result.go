package calculator

import (
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/sells-group/deed-cli/internal/apperr"
)

// Result is the single value returned by one calculation. A new Result
// replaces the previous one; results are never merged.
type Result struct {
	Calculator Kind    `json:"calculator" yaml:"calculator"`
	Key        string  `json:"key" yaml:"key"`
	Label      string  `json:"label" yaml:"label"`
	Value      float64 `json:"value" yaml:"value"`
}

// DecodeResult parses a calculation service body for c. The body must be a
// JSON object holding c.ResultKey as a number.
func DecodeResult(c *Calculator, body []byte) (*Result, error) {
	op := "calculator: decode " + string(c.Kind)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, apperr.New(apperr.KindMalformedResponse, op, eris.Wrap(err, "calculator: unmarshal"))
	}

	if raw, ok := fields["error"]; ok {
		return nil, apperr.New(apperr.KindRequestFailed, op, eris.Errorf("calculator: service error: %s", string(raw)))
	}

	raw, ok := fields[c.ResultKey]
	if !ok || string(raw) == "null" {
		return nil, apperr.New(apperr.KindMalformedResponse, op, eris.Errorf("calculator: missing %s", c.ResultKey))
	}

	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, apperr.New(apperr.KindMalformedResponse, op, eris.Wrapf(err, "calculator: %s is not a number", c.ResultKey))
	}

	return &Result{
		Calculator: c.Kind,
		Key:        c.ResultKey,
		Label:      c.ResultLabel,
		Value:      v,
	}, nil
}
