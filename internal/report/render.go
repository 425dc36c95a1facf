package report

import (
	"strings"
	"unicode"

	"github.com/sells-group/deed-cli/internal/locale"
)

// HeadingMarker prefixes a segment that is a section title.
const HeadingMarker = "##"

// BlockKind distinguishes display blocks.
type BlockKind string

const (
	BlockHeading   BlockKind = "heading"
	BlockParagraph BlockKind = "paragraph"
)

// Block is one display unit. Headings use Text; paragraphs use Lines and
// Citations.
type Block struct {
	Kind      BlockKind          `json:"kind" yaml:"kind"`
	Text      string             `json:"text,omitempty" yaml:"text,omitempty"`
	Lines     []string           `json:"lines,omitempty" yaml:"lines,omitempty"`
	Citations []RenderedCitation `json:"citations,omitempty" yaml:"citations,omitempty"`
}

// Footer summarizes the model and token usage of a report.
type Footer struct {
	Model        string `json:"model" yaml:"model"`
	InputTokens  string `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens string `json:"output_tokens" yaml:"output_tokens"`
}

// Rendered is the display form of a Report. Footer is nil only when no report
// was given.
type Rendered struct {
	Blocks []Block `json:"blocks" yaml:"blocks"`
	Footer *Footer `json:"footer,omitempty" yaml:"footer,omitempty"`
}

// RenderOption configures Render.
type RenderOption func(*renderOpts)

type renderOpts struct {
	numbers *locale.Formatter
}

// WithLocale sets the formatter used for footer token counts.
func WithLocale(f *locale.Formatter) RenderOption {
	return func(o *renderOpts) {
		o.numbers = f
	}
}

var defaultNumbers = locale.MustNew(locale.Default)

// Render converts a report into display blocks. It is a pure function of its
// input; a nil report yields no blocks and no footer.
func Render(r *Report, opts ...RenderOption) Rendered {
	o := renderOpts{numbers: defaultNumbers}
	for _, opt := range opts {
		opt(&o)
	}

	if r == nil {
		return Rendered{}
	}

	blocks := make([]Block, 0, len(r.Segments))
	for _, seg := range r.Segments {
		if b, ok := renderSegment(seg); ok {
			blocks = append(blocks, b)
		}
	}

	return Rendered{
		Blocks: blocks,
		Footer: &Footer{
			Model:        r.ModelUsed,
			InputTokens:  o.numbers.Int(r.Usage.InputTokens),
			OutputTokens: o.numbers.Int(r.Usage.OutputTokens),
		},
	}
}

func renderSegment(seg Segment) (Block, bool) {
	trimmed := strings.TrimSpace(seg.Text)
	if trimmed == "" {
		return Block{}, false
	}

	if IsHeading(seg.Text) {
		return Block{Kind: BlockHeading, Text: HeadingText(seg.Text)}, true
	}

	b := Block{
		Kind:  BlockParagraph,
		Lines: strings.Split(seg.Text, "\n"),
	}
	if len(seg.Citations) > 0 {
		b.Citations = make([]RenderedCitation, len(seg.Citations))
		for i, c := range seg.Citations {
			b.Citations[i] = renderCitation(c)
		}
	}
	return b, true
}

// IsHeading reports whether text, once trimmed, starts with HeadingMarker.
func IsHeading(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), HeadingMarker)
}

// HeadingText strips one leading HeadingMarker and the whitespace run after
// it, then trims. Text that is not a heading is returned trimmed.
func HeadingText(text string) string {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, HeadingMarker)
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	return strings.TrimSpace(s)
}
