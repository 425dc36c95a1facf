package cost

import (
	"github.com/sells-group/deed-cli/internal/report"
)

// Rates holds per-model token pricing keyed by the model id the analysis
// service reports in model_used.
type Rates struct {
	Anthropic map[string]ModelRate `yaml:"anthropic" mapstructure:"anthropic"`
}

// ModelRate holds per-model token pricing (USD per million tokens).
type ModelRate struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// Calculator estimates the cost of an analysis from its token usage.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Claude computes the cost of input and output tokens for model.
// Unknown models cost 0.
func (c *Calculator) Claude(model string, input, output int) float64 {
	rate, ok := c.rates.Anthropic[model]
	if !ok {
		return 0
	}
	inCost := (float64(input) / 1e6) * rate.Input
	outCost := (float64(output) / 1e6) * rate.Output
	return inCost + outCost
}

// Report estimates the cost of r. ok is false when the model has no rate.
func (c *Calculator) Report(r *report.Report) (usd float64, ok bool) {
	if r == nil {
		return 0, false
	}
	if _, known := c.rates.Anthropic[r.ModelUsed]; !known {
		return 0, false
	}
	return c.Claude(r.ModelUsed, r.Usage.InputTokens, r.Usage.OutputTokens), true
}

// DefaultRates returns the default pricing rates.
func DefaultRates() Rates {
	return Rates{
		Anthropic: map[string]ModelRate{
			"claude-sonnet-4-20250514":   {Input: 3.00, Output: 15.00},
			"claude-sonnet-4-5-20250929": {Input: 3.00, Output: 15.00},
			"claude-haiku-4-5-20251001":  {Input: 0.80, Output: 4.00},
			"claude-opus-4-6":            {Input: 15.00, Output: 75.00},
		},
	}
}
