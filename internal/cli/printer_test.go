package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/deed-cli/internal/calculator"
	"github.com/sells-group/deed-cli/internal/cost"
	"github.com/sells-group/deed-cli/internal/locale"
	"github.com/sells-group/deed-cli/internal/report"
)

func deedReport() *report.Report {
	return &report.Report{
		Success: true,
		Segments: []report.Segment{
			{Text: "## Resumo", Kind: "text"},
			{
				Text: "Imóvel situado na Rua A\nMatrícula 1234",
				Kind: "text",
				Citations: []report.Citation{{
					CitedText:     "Rua A, nº 10\r\nCentro",
					DocumentTitle: "Escritura",
					StartPage:     2,
					EndPage:       3,
					Kind:          "page_location",
				}},
			},
			{Text: "   ", Kind: "text"},
		},
		ModelUsed: "claude-sonnet-4-20250514",
		Usage:     report.Usage{InputTokens: 4821, OutputTokens: 312},
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Format{"text": FormatText, "JSON": FormatJSON, " yaml ": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestPrinter_ReportPlainText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatText, WithPlain())
	require.NoError(t, p.Report(deedReport()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, ReportTitle+"\n\nResumo\n\n"))
	assert.Contains(t, out, "Imóvel situado na Rua A\nMatrícula 1234")
	assert.Contains(t, out, "📄 Escritura · Pág. 2-3")
	assert.Contains(t, out, "“Rua A, nº 10 \nCentro”")
	assert.Contains(t, out, "Modelo: claude-sonnet-4-20250514")
	assert.Contains(t, out, "Tokens de entrada: 4.821")
	assert.Contains(t, out, "Tokens de saída: 312")
	assert.NotContains(t, out, EstimatedCostLabel)
}

func TestPrinter_ReportWithCost(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatText, WithPlain(), WithCost(cost.NewCalculator(cost.DefaultRates())))
	require.NoError(t, p.Report(deedReport()))

	// 4821 * 3 / 1e6 + 312 * 15 / 1e6 = 0.019143
	assert.Contains(t, buf.String(), "Custo estimado: US$ 0,019")
}

func TestPrinter_ReportLocale(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatText, WithPlain(), WithLocale(locale.MustNew("en-US")))
	require.NoError(t, p.Report(deedReport()))

	assert.Contains(t, buf.String(), "Tokens de entrada: 4,821")
}

func TestPrinter_ReportStyledBox(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatText)
	require.NoError(t, p.Report(deedReport()))

	out := buf.String()
	assert.Contains(t, out, "╭")
	assert.Contains(t, out, ReportTitle)
	assert.Contains(t, out, "Resumo")
	assert.Contains(t, out, "Pág. 2-3")
}

func TestPrinter_ReportJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatJSON, WithCost(cost.NewCalculator(cost.DefaultRates())))
	require.NoError(t, p.Report(deedReport()))

	var doc struct {
		Report struct {
			ModelUsed string `json:"model_used"`
			Content   []any  `json:"content"`
		} `json:"report"`
		Rendered struct {
			Blocks []report.Block `json:"blocks"`
			Footer report.Footer  `json:"footer"`
		} `json:"rendered"`
		EstimatedCost float64 `json:"estimated_cost_usd"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "claude-sonnet-4-20250514", doc.Report.ModelUsed)
	assert.Len(t, doc.Report.Content, 3)
	require.Len(t, doc.Rendered.Blocks, 2)
	assert.Equal(t, report.BlockHeading, doc.Rendered.Blocks[0].Kind)
	assert.Equal(t, "4.821", doc.Rendered.Footer.InputTokens)
	assert.InDelta(t, 0.019143, doc.EstimatedCost, 0.000001)
}

func TestPrinter_ReportYAMLOmitsUnknownCost(t *testing.T) {
	t.Parallel()

	r := deedReport()
	r.ModelUsed = "modelo-desconhecido"

	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatYAML, WithCost(cost.NewCalculator(cost.DefaultRates())))
	require.NoError(t, p.Report(r))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Contains(t, doc, "report")
	assert.Contains(t, doc, "rendered")
	assert.NotContains(t, doc, "estimated_cost_usd")
}

func TestPrinter_NilReport(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatText).Report(nil))
	assert.Empty(t, buf.String())
}

func TestPrinter_ResultText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatText, WithPlain())
	require.NoError(t, p.Result(&calculator.Result{
		Calculator: calculator.KindReverse,
		Key:        "initial_principal_limit",
		Label:      "Limite Principal Inicial",
		Value:      450000,
	}))

	assert.Equal(t, "Limite Principal Inicial: R$ 450.000,00\n", buf.String())
}

func TestPrinter_ResultFallsBackToKey(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatText, WithPlain())
	require.NoError(t, p.Result(&calculator.Result{Key: "annual_annuity", Value: 1234.5}))

	assert.Equal(t, "annual_annuity: R$ 1.234,50\n", buf.String())
}

func TestPrinter_ResultJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatJSON)
	require.NoError(t, p.Result(&calculator.Result{
		Calculator: calculator.KindViager,
		Key:        "annual_annuity",
		Label:      "Anuidade",
		Value:      30000,
	}))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "viager", doc["calculator"])
	assert.Equal(t, "Anuidade", doc["label"])
	assert.Equal(t, "R$ 30.000,00", doc["display"])
	assert.InDelta(t, 30000, doc["value"], 0.001)
}
