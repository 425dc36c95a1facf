package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/deed-cli/internal/calculator"
	"github.com/sells-group/deed-cli/internal/cost"
	"github.com/sells-group/deed-cli/internal/locale"
	"github.com/sells-group/deed-cli/internal/report"
)

// Display labels.
const (
	ReportTitle        = "Análise do Documento"
	ModelLabel         = "Modelo:"
	InputTokensLabel   = "Tokens de entrada:"
	OutputTokensLabel  = "Tokens de saída:"
	EstimatedCostLabel = "Custo estimado:"
)

// Format selects how a Printer writes its output.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates an --output flag value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", eris.Errorf("cli: unknown output format %q (want text, json or yaml)", s)
	}
}

// PrinterOption configures a Printer.
type PrinterOption func(*Printer)

// WithLocale sets the number formatter used for token counts and amounts.
func WithLocale(f *locale.Formatter) PrinterOption {
	return func(p *Printer) {
		p.numbers = f
	}
}

// WithCost adds an estimated cost line computed from report usage.
func WithCost(c *cost.Calculator) PrinterOption {
	return func(p *Printer) {
		p.costs = c
	}
}

// WithPlain disables styling and the border box in text output.
func WithPlain() PrinterOption {
	return func(p *Printer) {
		p.plain = true
	}
}

// Printer writes reports and calculator results in one output format.
type Printer struct {
	w       io.Writer
	format  Format
	numbers *locale.Formatter
	costs   *cost.Calculator
	plain   bool
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer, format Format, opts ...PrinterOption) *Printer {
	p := &Printer{
		w:       w,
		format:  format,
		numbers: locale.MustNew(locale.Default),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// reportDoc is the structured (json/yaml) form of a printed report.
type reportDoc struct {
	Report        *report.Report  `json:"report" yaml:"report"`
	Rendered      report.Rendered `json:"rendered" yaml:"rendered"`
	EstimatedCost *float64        `json:"estimated_cost_usd,omitempty" yaml:"estimated_cost_usd,omitempty"`
}

// resultDoc is the structured (json/yaml) form of a calculator result.
type resultDoc struct {
	Calculator calculator.Kind `json:"calculator" yaml:"calculator"`
	Key        string          `json:"key" yaml:"key"`
	Label      string          `json:"label,omitempty" yaml:"label,omitempty"`
	Value      float64         `json:"value" yaml:"value"`
	Display    string          `json:"display" yaml:"display"`
}

// Report writes r. A nil report writes nothing.
func (p *Printer) Report(r *report.Report) error {
	if r == nil {
		return nil
	}
	rendered := report.Render(r, report.WithLocale(p.numbers))

	var usd *float64
	if p.costs != nil {
		if v, ok := p.costs.Report(r); ok {
			usd = &v
		}
	}

	switch p.format {
	case FormatJSON:
		return p.writeJSON(reportDoc{Report: r, Rendered: rendered, EstimatedCost: usd})
	case FormatYAML:
		return p.writeYAML(reportDoc{Report: r, Rendered: rendered, EstimatedCost: usd})
	default:
		return p.writeText(p.reportText(rendered, usd))
	}
}

// Result writes a calculator result with its amount formatted as currency.
func (p *Printer) Result(res *calculator.Result) error {
	if res == nil {
		return nil
	}
	doc := resultDoc{
		Calculator: res.Calculator,
		Key:        res.Key,
		Label:      res.Label,
		Value:      res.Value,
		Display:    p.numbers.Currency(res.Value),
	}

	switch p.format {
	case FormatJSON:
		return p.writeJSON(doc)
	case FormatYAML:
		return p.writeYAML(doc)
	default:
		label := res.Label
		if label == "" {
			label = res.Key
		}
		line := p.style(BoldStyle, label+":") + " " + p.style(SuccessStyle, doc.Display)
		return p.writeText(line)
	}
}

func (p *Printer) reportText(rendered report.Rendered, usd *float64) string {
	var sections []string
	for _, b := range rendered.Blocks {
		switch b.Kind {
		case report.BlockHeading:
			sections = append(sections, p.style(HeadingStyle, b.Text))
		case report.BlockParagraph:
			sections = append(sections, p.paragraph(b))
		}
	}

	if f := rendered.Footer; f != nil {
		footer := []string{
			ModelLabel + " " + f.Model,
			InputTokensLabel + " " + f.InputTokens,
			OutputTokensLabel + " " + f.OutputTokens,
		}
		if usd != nil {
			footer = append(footer, EstimatedCostLabel+" US$ "+p.numbers.Amount(*usd))
		}
		sections = append(sections, p.style(SubtleStyle, strings.Join(footer, "  ")))
	}

	body := strings.Join(sections, "\n\n")
	if p.plain {
		return ReportTitle + "\n\n" + body
	}
	return RenderBox(ReportTitle, body)
}

func (p *Printer) paragraph(b report.Block) string {
	parts := []string{strings.Join(b.Lines, "\n")}
	for _, c := range b.Citations {
		source := DocumentIcon + " " + c.DocumentTitle + " · " + c.PageLabel
		quote := QuoteOpen + c.Text + QuoteClose
		parts = append(parts, p.style(InfoStyle, source), p.style(CitationStyle, quote))
	}
	return strings.Join(parts, "\n")
}

func (p *Printer) style(s lipgloss.Style, text string) string {
	if p.plain {
		return text
	}
	return s.Render(text)
}

func (p *Printer) writeText(s string) error {
	if _, err := fmt.Fprintln(p.w, s); err != nil {
		return eris.Wrap(err, "cli: write output")
	}
	return nil
}

func (p *Printer) writeJSON(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "cli: encode json")
	}
	return nil
}

func (p *Printer) writeYAML(v any) error {
	enc := yaml.NewEncoder(p.w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "cli: encode yaml")
	}
	if err := enc.Close(); err != nil {
		return eris.Wrap(err, "cli: close yaml encoder")
	}
	return nil
}
